package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "vcon:", err)
		var uerr usageError
		if errors.As(err, &uerr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type usageError struct {
	Err error
}

func (e usageError) Error() string {
	return e.Err.Error()
}

func (e usageError) Unwrap() error {
	return e.Err
}
