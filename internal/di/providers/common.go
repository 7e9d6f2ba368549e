// Package providers contains dependency injection providers for the siegemap server.
package providers

import "time"

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second
