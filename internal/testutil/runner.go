// internal/testutil/runner.go
package testutil

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"

	"reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/execx"
)

// Call es una invocación registrada por FakeRunner.
type Call struct {
	Name string
	Args []string
}

// Response describe lo que un binario falso "hace" al ejecutarse.
type Response struct {
	// Stdout se entrega línea a línea al OutputHandler.
	Stdout string

	// OutputFlag/Output: si OutputFlag aparece en args, Output se escribe en
	// el fichero indicado por el argumento siguiente (-oG, -o).
	OutputFlag string
	Output     string

	// Err hace fallar la ejecución (código de salida 1).
	Err error
}

// FakeRunner implements execx.Runner with scripted responses per binary.
// Binaries without a response behave as "not found in PATH".
type FakeRunner struct {
	mu        sync.Mutex
	calls     []Call
	Responses map[string]Response

	// Func, si no es nil, tiene prioridad sobre Responses.
	Func func(name string, args []string) Response
}

// NewFakeRunner crea un runner con respuestas por nombre de binario.
func NewFakeRunner(responses map[string]Response) *FakeRunner {
	if responses == nil {
		responses = map[string]Response{}
	}
	return &FakeRunner{Responses: responses}
}

// Run registra la llamada y reproduce la respuesta configurada.
func (f *FakeRunner) Run(ctx context.Context, name string, args []string, handler execx.OutputHandler) (execx.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	fn := f.Func
	resp, ok := f.Responses[name]
	f.mu.Unlock()

	if fn != nil {
		resp, ok = fn(name, args), true
	}
	if !ok {
		return execx.Result{ExitCode: -1}, errors.Wrapf(errors.ErrExternalTool, "%s not found in PATH", name)
	}
	if err := ctx.Err(); err != nil {
		return execx.Result{ExitCode: -1}, errors.Wrapf(errors.ErrTimeout, "%s: %v", name, err)
	}

	if resp.OutputFlag != "" {
		if path := ArgAfter(args, resp.OutputFlag); path != "" {
			if err := os.WriteFile(path, []byte(resp.Output), 0o600); err != nil {
				return execx.Result{ExitCode: 1}, errors.Wrapf(errors.ErrExternalTool, "%s: %v", name, err)
			}
		}
	}

	if handler != nil {
		sc := bufio.NewScanner(strings.NewReader(resp.Stdout))
		for sc.Scan() {
			_ = handler.ProcessLine(sc.Bytes())
		}
		_ = handler.Finalize()
	}

	if resp.Err != nil {
		return execx.Result{ExitCode: 1}, errors.Wrapf(errors.ErrExternalTool, "%s exited with code 1: %v", name, resp.Err)
	}
	return execx.Result{}, nil
}

// Calls devuelve una copia de las invocaciones registradas.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo devuelve sólo las invocaciones de name.
func (f *FakeRunner) CallsTo(name string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ArgAfter devuelve el argumento que sigue a flag, o "".
func ArgAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
