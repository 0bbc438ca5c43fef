//go:build linux

package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemdUnit(t *testing.T) {
	unit := systemdUnit("/usr/local/bin/deckrc", receiveCommand([]string{"--sink", "viiper", "--device-name", "my pad"}))

	assert.Contains(t, unit, `ExecStart="/usr/local/bin/deckrc" receive --sink viiper --device-name "my pad"`+"\n")
	assert.Contains(t, unit, "After=network-online.target")
	assert.Contains(t, unit, "Restart=on-failure")
	assert.True(t, strings.HasSuffix(unit, "WantedBy=multi-user.target\n"))
}
