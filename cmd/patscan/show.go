package main

import (
	"fmt"

	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/fs"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	if deps.Store == nil {
		err := patscan.Errorf(patscan.EINVALID, "no dataset selected")
		fmt.Fprintf(deps.Stderr, "error: %s\n", patscan.ErrorMessage(err))
		return err
	}

	d, err := deps.Store.Load(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", patscan.ErrorMessage(err))
		return err
	}

	if len(d) == 0 {
		fmt.Fprintln(deps.Stdout, "No records found. Use 'patscan KEYWORD' to scrape some.")
		return nil
	}

	if c.Keys {
		for _, key := range d.Keys() {
			fmt.Fprintln(deps.Stdout, key)
		}
		return nil
	}

	data, err := fs.Encode(d)
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	_, err = deps.Stdout.Write(data)
	return err
}
