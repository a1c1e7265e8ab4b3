// Package portaudio plays a Renderer through PortAudio. It needs the
// PortAudio C library and is only compiled with the portaudio build tag.
package portaudio
