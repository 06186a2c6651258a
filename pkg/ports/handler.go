package ports

// Handler is a framework service with a start/stop lifecycle.
// Handlers are started in registration order and stopped in reverse.
type Handler interface {
	Start() error
	Stop() error
}
