// Package rotation drives the wallpaper rotation: each tick resolves the daypart for the
// current hour, selects an image, gates repeats and hands the result to the applier.
//
// Loop state is explicit. Tick takes a State and returns the next one, so the whole cycle
// can be stepped in tests with a fake clock and without goroutines.
package rotation
