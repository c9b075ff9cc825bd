package debugpprof

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
)

// ListenAndServe exposes net/http/pprof's default mux on its own port.
// Ambient ops tooling, gated behind -pprof-port (0 disables it).
func ListenAndServe(port int) error {
	return fmt.Errorf("pprof listener stopped: %w", http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), nil))
}
