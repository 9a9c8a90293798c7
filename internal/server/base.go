package server

const (
	fallbackBufferSize    = 1500 // byte count, should match transport MTU
	fallbackErrorChanSize = 100  // error count
)

// bufferSize Scratch buffer capacity for a server node; a
// non-positive configured value falls back to the default
func bufferSize(configured int) int {
	if configured > 0 {
		return configured
	}
	return fallbackBufferSize
}

func errorChanSize(configured int) int {
	if configured > 0 {
		return configured
	}
	return fallbackErrorChanSize
}
