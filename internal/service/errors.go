package service

type ErrRunQueueFull struct{}

func (e ErrRunQueueFull) Error() string {
	return "run queue is full"
}

func NewErrRunQueueFull() *ErrRunQueueFull {
	return &ErrRunQueueFull{}
}

type ErrRunQueueClosed struct{}

func (e ErrRunQueueClosed) Error() string {
	return "run queue is shut down"
}

func NewErrRunQueueClosed() *ErrRunQueueClosed {
	return &ErrRunQueueClosed{}
}
