package quant

// resetForTest clears the single-init guard so each test can exercise
// Init with its own center value.
func resetForTest() {
	ready = false
}
