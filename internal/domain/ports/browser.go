package ports

// BrowserLauncher opens the editor in a browser
type BrowserLauncher interface {
	// Launch opens url in the configured browser unless noOpen is set
	Launch(url string, noOpen bool) error
	// Detect returns the name of the browser Launch would use
	Detect() (string, error)
}
