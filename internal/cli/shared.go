package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-varform/components/address"
	"github.com/goliatone/go-varform/internal/memengine"
	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/orchestrator"
)

const defaultSample = "lease.yaml"

func (o *RootOptions) engine() (*memengine.Engine, error) {
	var (
		def memengine.Definition
		err error
	)
	if o.Template == "" {
		def, err = memengine.LoadSample(defaultSample)
	} else {
		def, err = memengine.LoadFile(o.Template)
	}
	if err != nil {
		return nil, err
	}
	return memengine.New(def, memengine.WithLogger(o.logger))
}

// params merges --params-file and --param flags; flags win.
func (o *RootOptions) params() (map[string]string, error) {
	out := map[string]string{}
	if o.ParamsFile != "" {
		data, err := os.ReadFile(o.ParamsFile)
		if err != nil {
			return nil, fmt.Errorf("read params: %w", err)
		}
		if err := json.Unmarshal(data, &out); err != nil {
			out = map[string]string{}
			if err := yaml.Unmarshal(data, &out); err != nil {
				return nil, fmt.Errorf("parse params %s: invalid JSON or YAML", o.ParamsFile)
			}
		}
	}
	for _, raw := range o.Params {
		name, value, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: expected name=value", raw)
		}
		out[name] = value
	}
	return out, nil
}

func (o *RootOptions) addressAPI() (engine.AddressAPI, error) {
	if o.cfg.AddressURL != "" {
		return address.NewClient(o.cfg.AddressURL)
	}
	addresses, err := o.addresses()
	if err != nil {
		return nil, err
	}
	return addresses.API(), nil
}

// addresses builds the address component once, over cfg.AddressBook when set
// and the embedded book otherwise.
func (o *RootOptions) addresses() (*address.Component, error) {
	if o.addressComponent != nil {
		return o.addressComponent, nil
	}
	var fns []address.OptionFn
	if o.cfg.AddressBook != "" {
		file, err := os.Open(o.cfg.AddressBook)
		if err != nil {
			return nil, fmt.Errorf("read address book: %w", err)
		}
		defer file.Close()
		entries, err := address.LoadEntries(file)
		if err != nil {
			return nil, fmt.Errorf("load address book %s: %w", o.cfg.AddressBook, err)
		}
		fns = append(fns, address.WithEntries(entries))
	}
	component, err := address.New(fns...)
	if err != nil {
		return nil, err
	}
	o.addressComponent = component
	return component, nil
}

func (o *RootOptions) orchestrator(eng *memengine.Engine, extra ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	api, err := o.addressAPI()
	if err != nil {
		return nil, err
	}
	options := []orchestrator.Option{
		orchestrator.WithEngine(eng),
		orchestrator.WithIdentityAPI(eng.Directory()),
		orchestrator.WithAddressAPI(api),
		orchestrator.WithInputProps(o.cfg.Inputs()),
		orchestrator.WithLogger(o.logger),
	}
	return orchestrator.New(append(options, extra...)...), nil
}

// build executes the template once and returns the resulting form.
func (o *RootOptions) build(ctx context.Context) (*orchestrator.Form, error) {
	eng, err := o.engine()
	if err != nil {
		return nil, err
	}
	params, err := o.params()
	if err != nil {
		return nil, err
	}
	orch, err := o.orchestrator(eng)
	if err != nil {
		return nil, err
	}
	exec, executed, err := eng.Execute(ctx, params)
	if err != nil {
		return nil, err
	}
	return orch.Build(ctx, orchestrator.Request{Exec: exec, ExecutedVariables: executed, Parameters: params})
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "written to %s\n", path)
	return nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
