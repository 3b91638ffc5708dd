// Package delivery holds the servers that expose the usecases to clients.
package delivery

import "context"

// Delivery is a server started by the application and stopped through the fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
