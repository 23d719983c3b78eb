// Package nmcli drives NetworkManager through its command line client.
package nmcli

import (
	"context"
	"strings"

	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/infra/command"
	"dcimsync/internal/logging"
)

const binary = "nmcli"

// Connection is one row of "nmcli connection show".
type Connection struct {
	Name   string
	Device string
}

// Active reports whether the connection is bound to a device.
func (c Connection) Active() bool {
	return c.Device != "" && c.Device != "--"
}

type Client struct {
	Run    command.Runner
	Logger logging.Logger
}

func (c Client) run(ctx context.Context, op string, args ...string) ([]string, error) {
	run := c.Run
	if run == nil {
		run = command.Exec
	}
	c.Logger.Verbosef("%s %s", binary, strings.Join(args, " "))
	out, err := run(ctx, binary, args...)
	lines := command.Lines(out)
	if err != nil {
		for _, line := range lines {
			c.Logger.Warnf("%s: %s", binary, line)
		}
		return nil, appErrors.Wrap(appErrors.Network, op, binary, err)
	}
	return lines, nil
}

func (c Client) Connections(ctx context.Context) ([]Connection, error) {
	lines, err := c.run(ctx, "list connections", "-t", "-f", "NAME,DEVICE", "connection", "show")
	if err != nil {
		return nil, err
	}
	var conns []Connection
	for _, line := range lines {
		if line == "" {
			continue
		}
		fields := SplitTerse(line)
		conn := Connection{Name: fields[0]}
		if len(fields) > 1 {
			conn.Device = fields[1]
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

// ActiveConnection returns the name of the first connection bound to a
// device, or "" when none is.
func (c Client) ActiveConnection(ctx context.Context) (string, error) {
	conns, err := c.Connections(ctx)
	if err != nil {
		return "", err
	}
	for _, conn := range conns {
		if conn.Active() {
			return conn.Name, nil
		}
	}
	return "", nil
}

// Networks lists the SSIDs currently visible, without duplicates.
func (c Client) Networks(ctx context.Context) ([]string, error) {
	lines, err := c.run(ctx, "scan", "-t", "-f", "SSID", "device", "wifi", "list")
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var ssids []string
	for _, line := range lines {
		ssid := strings.Join(SplitTerse(line), ":")
		if ssid == "" || seen[ssid] {
			continue
		}
		seen[ssid] = true
		ssids = append(ssids, ssid)
	}
	return ssids, nil
}

func (c Client) Connect(ctx context.Context, ssid, password string) error {
	c.Logger.Infof("Connecting to %q", ssid)
	_, err := c.run(ctx, "connect", "device", "wifi", "connect", ssid, "password", password)
	return err
}

func (c Client) Up(ctx context.Context, name string) error {
	c.Logger.Infof("Bringing %q back up", name)
	_, err := c.run(ctx, "connection up", "connection", "up", name)
	return err
}

// SplitTerse splits one line of nmcli terse output. Field separators are
// colons; literal colons and backslashes inside values arrive escaped.
func SplitTerse(line string) []string {
	var fields []string
	var b strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	return append(fields, b.String())
}
