package cli

import (
	"github.com/taskpilot/taskpilot/internal/app"
)

// container is the global wired application shared by the command packages.
var container *app.Container

// SetContainer sets the global application container.
func SetContainer(c *app.Container) {
	container = c
}

// GetContainer returns the global application container. Nil when wiring
// failed and the CLI runs without storage.
func GetContainer() *app.Container {
	return container
}
