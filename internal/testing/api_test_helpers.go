package testing

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/internal/server/api"
)

// StartAPIServer starts an API server on a free port and calls register to allow
// the caller to register the handlers needed for the test. Returns the address
// and a function to call when done.
func StartAPIServer(t *testing.T, register func(r *api.Router)) (addr string, done func()) {
	t.Helper()
	apiSrv := api.New(api.ServerConfig{Addr: "127.0.0.1:0"}, slog.Default())
	if register != nil {
		register(apiSrv.Router())
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}

	done = func() {
		apiSrv.Close()
		time.Sleep(10 * time.Millisecond)
	}
	return apiSrv.Addr(), done
}

// ExecCmd executes a raw command against a running API server and returns the full
// response line without the trailing newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()
	r := bufio.NewReader(c)
	_, _ = fmt.Fprintf(c, "%s\n", cmd)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}
	if len(line) == 0 {
		return ""
	}
	return line[:len(line)-1]
}
