// Command tupdump inspects TUP wire messages: dump their tuple structure,
// or print their parsed header. It has no schema, so it neither validates
// nor unpacks field values. Grounded on the
// teacher's cmd/glint Command/CommandRegistry pattern (glint.go), trimmed
// to the two operations TUP's much smaller surface actually needs.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/liamg-sof/tup"
)

// Command is one tupdump subcommand.
type Command interface {
	Name() string
	DefineFlags(fs *flag.FlagSet)
	Execute(args []string) error
}

// CommandRegistry dispatches a subcommand name to its Command.
type CommandRegistry struct {
	commands map[string]Command
}

func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{commands: make(map[string]Command)}
	r.Register(&DumpCmd{})
	r.Register(&HeaderCmd{})
	return r
}

func (r *CommandRegistry) Register(cmd Command) { r.commands[cmd.Name()] = cmd }

func (r *CommandRegistry) Execute(name string, args []string) error {
	cmd, ok := r.commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	fs := flag.NewFlagSet(fmt.Sprintf("tupdump %s", name), flag.ExitOnError)
	cmd.DefineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return cmd.Execute(fs.Args())
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	registry := NewCommandRegistry()
	if err := registry.Execute(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `tupdump - inspect TUP wire messages

Usage:
  tupdump dump    < message.bin      # walk tuple structure (no schema needed)
  tupdump header  < message.bin      # print the parsed header only

Input is read as raw binary from stdin unless -hex is given, in which case
stdin is treated as a hex dump (whitespace ignored).
`)
}

func readInput(useHex bool) ([]byte, error) {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if !useHex {
		return raw, nil
	}
	cleaned := strings.Join(strings.Fields(string(raw)), "")
	return hex.DecodeString(cleaned)
}

// DumpCmd walks a message's tuple structure without a registry.
type DumpCmd struct {
	useHex bool
}

func (c *DumpCmd) Name() string { return "dump" }

func (c *DumpCmd) DefineFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.useHex, "hex", false, "treat stdin as a hex dump")
}

func (c *DumpCmd) Execute(args []string) error {
	data, err := readInput(c.useHex)
	if err != nil {
		return err
	}

	v := &printingVisitor{}
	if err := tup.Walk(data, v); err != nil {
		return fmt.Errorf("walk: %w", err)
	}
	return nil
}

// HeaderCmd prints only the parsed header fields.
type HeaderCmd struct {
	useHex bool
}

func (c *HeaderCmd) Name() string { return "header" }

func (c *HeaderCmd) DefineFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.useHex, "hex", false, "treat stdin as a hex dump")
}

func (c *HeaderCmd) Execute(args []string) error {
	data, err := readInput(c.useHex)
	if err != nil {
		return err
	}

	v := &printingVisitor{headerOnly: true}
	return tup.Walk(data, v)
}

// printingVisitor implements tup.TupleVisitor, writing an indented dump of
// a message's tuple structure to stdout. It needs no Registry: tuple ids
// are printed as raw numbers since there is no schema to resolve them
// against, matching Walk's schema-less contract.
type printingVisitor struct {
	headerOnly bool
}

func (v *printingVisitor) VisitHeader(h tup.Header) {
	fmt.Printf("action=%06x class=%d subclass=%d action=%d\n", h.ActionID(), h.Class, h.Subclass, h.Action)
	fmt.Printf("flags: status=%v priority=%v datagram=%v route=%v elems=%v vendor=%d\n",
		h.Status, h.Priority, h.Datagram, h.RoutePresent, h.ElemsPresent, h.Vendor)
	if h.RoutePresent {
		fmt.Printf("route: receiver=%d sender=%d broadcast=%v\n", h.Route.Receiver, h.Route.Sender, h.Route.Broadcast())
	}
	if h.ElemsPresent {
		fmt.Printf("elems: count=%d size=%d words\n", h.Elems.NumTuples, h.Elems.Size)
	}
}

func (v *printingVisitor) VisitTuple(t tup.TupleView, depth int) bool {
	if v.headerOnly {
		return true
	}
	fmt.Printf("%stuple id=%d kind=%s size=%d", strings.Repeat("  ", depth), t.ID, t.Kind, t.Size)
	if t.Kind.IsArray() {
		fmt.Printf(" count=%d", t.Count)
	}
	fmt.Println()
	return false
}

func (v *printingVisitor) VisitTupleEnd(t tup.TupleView, depth int) {}
