package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// command is one plain text console command.
type command struct {
	name  string
	usage string
	help  string
	args  int
	run   func(s *Server, ctx context.Context, args []string) ([]string, error)
}

var commands []command

func init() {
	// Assigned in init because help lists the table it belongs to.
	commands = []command{
		{"ping", "ping", "check that the module is alive", 0, cmdPing},
		{"info", "info", "show module information", 0, cmdInfo},
		{"getpar", "getpar <name>", "get a parameter value", 1, cmdGetPar},
		{"setpar", "setpar <name> <value>", "set a parameter value", 2, cmdSetPar},
		{"listpar", "listpar", "list all parameters", 0, cmdListPar},
		{"serout", "serout <on|off>", "enable or disable serial messages", 1, cmdSerOut},
		{"help", "help", "show this help", 0, cmdHelp},
	}
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

// handleCommand runs a text command and returns its reply lines.
func (s *Server) handleCommand(ctx context.Context, line string) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]

	for _, c := range commands {
		if c.name != name {
			continue
		}
		if len(args) < c.args {
			return []string{"ERR Missing arguments, usage: " + c.usage}
		}
		lines, err := c.run(s, ctx, args)
		if err != nil {
			return []string{"ERR " + err.Error()}
		}
		return lines
	}
	return []string{fmt.Sprintf("ERR Unsupported command [%s]", name)}
}

func cmdPing(*Server, context.Context, []string) ([]string, error) {
	return []string{"ALIVE"}, nil
}

func cmdInfo(s *Server, _ context.Context, _ []string) ([]string, error) {
	info := s.module.Info()
	lines := []string{
		fmt.Sprintf("INFO: %s %s, %s", info.Vendor, info.Name, info.Description),
		"INFO: backend " + info.Backend,
	}
	if info.Mapping != nil {
		lines = append(lines, "INFO: mapping "+info.Mapping.String())
	}
	return append(lines, "OK"), nil
}

func cmdGetPar(s *Server, _ context.Context, args []string) ([]string, error) {
	v, err := s.module.Params().Get(args[0])
	if err != nil {
		return nil, err
	}
	return []string{args[0] + " " + v, "OK"}, nil
}

func cmdSetPar(s *Server, _ context.Context, args []string) ([]string, error) {
	if err := s.module.Params().Set(args[0], strings.Join(args[1:], " ")); err != nil {
		return nil, err
	}
	return []string{"OK"}, nil
}

func cmdListPar(s *Server, _ context.Context, _ []string) ([]string, error) {
	params := s.module.Params().List()
	lines := make([]string, 0, len(params)+1)
	for _, p := range params {
		lines = append(lines, tracker.FormatParam(p))
	}
	return append(lines, "OK"), nil
}

func cmdSerOut(s *Server, _ context.Context, args []string) ([]string, error) {
	switch args[0] {
	case "on", "off":
	default:
		return nil, fmt.Errorf("serout expects on or off, got %q", args[0])
	}
	if err := s.module.Params().Set(tracker.ParamSerOut, args[0]); err != nil {
		return nil, err
	}
	return []string{"OK"}, nil
}

func cmdHelp(*Server, context.Context, []string) ([]string, error) {
	lines := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		lines = append(lines, fmt.Sprintf("%-22s %s", c.usage, c.help))
	}
	return append(lines, "OK"), nil
}
