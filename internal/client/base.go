package client

const (
	fallbackBufferSize    = 1500 // byte count, should match transport MTU
	fallbackErrorChanSize = 100  // error count
)

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
