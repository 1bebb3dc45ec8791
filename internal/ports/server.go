package ports

// Server is a long running network service
type Server interface {
	// Start begins serving in the background
	Start() error

	// Stop shuts the service down
	Stop() error
}
