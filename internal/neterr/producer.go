package neterr

import "sync"

// Producer Read-only interface for objects that publish runtime
// errors on a bounded channel instead of aborting their work loop.
type Producer interface {
	Errors() <-chan error
}

type DefaultProducer struct {
	errorChan      chan error
	errorChanMutex sync.Mutex
}

func (p *DefaultProducer) Errors() <-chan error {
	p.errorChanMutex.Lock()
	defer p.errorChanMutex.Unlock()
	return p.errorChan
}

func (p *DefaultProducer) ConfigureErrors(chanBufferSize int) {
	p.errorChanMutex.Lock()
	defer p.errorChanMutex.Unlock()

	if p.errorChan == nil {
		p.errorChan = make(chan error, chanBufferSize)
	}
}

// SendError Non-blocking: errors are dropped once the channel is full
// so that a consumer that never drains it cannot stall the node.
func (p *DefaultProducer) SendError(err error) {
	p.errorChanMutex.Lock()
	defer p.errorChanMutex.Unlock()

	if p.errorChan != nil {
		select {
		case p.errorChan <- err:
			return
		default:
		}
	}
}

func (p *DefaultProducer) CloseErrors() {
	p.errorChanMutex.Lock()
	defer p.errorChanMutex.Unlock()

	if p.errorChan != nil {
		close(p.errorChan)
		p.errorChan = nil
	}
}
