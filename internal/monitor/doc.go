// Package monitor is the live terminal preview behind `inkdash preview --watch`.
//
// It runs the same render cycle as the daemon on a timer and shows each frame
// as half-block text, with the metrics that fell back to error tokens listed
// underneath. It never touches the real panel: the runner it drives is wired
// to a no-op display driver.
//
// # Keys
//
//	q / Ctrl+C  Quit
//	r           Render now
//	?           Toggle help
package monitor
