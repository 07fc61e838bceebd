package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/core"
)

func runLearn(ctx context.Context, svc *core.Services, out io.Writer, args []string) error {
	if len(args) != 4 {
		return errors.New("learn needs <supplier-id> <field> <text-file> <value>")
	}
	supplierID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("supplier id: %w", err)
	}
	field, ok := constants.ParseFieldName(args[1])
	if !ok {
		return fmt.Errorf("unknown field %q", args[1])
	}
	raw, err := os.ReadFile(args[2])
	if err != nil {
		return err
	}

	learned, err := svc.Pipeline.Confirm(ctx, supplierID, string(raw), map[constants.FieldName]string{field: args[3]})
	if err != nil {
		return err
	}
	if len(learned) == 0 {
		fmt.Fprintf(out, "%s: nothing learned from %q\n", field, args[3])
		return nil
	}
	p, err := svc.Patterns.Get(ctx, supplierID, field)
	if err != nil {
		return err
	}
	if p != nil {
		fmt.Fprintf(out, "%s: learned %s\n", field, p.Pattern)
	}
	return nil
}

func runSuppliers(ctx context.Context, svc *core.Services, args []string) error {
	if len(args) == 0 {
		return errors.New("suppliers needs add or list")
	}
	switch args[0] {
	case "add":
		if len(args) < 2 || len(args) > 4 {
			return errors.New("suppliers add needs <name> [tax-id] [iban]")
		}
		var fields [3]string
		copy(fields[:], args[1:])
		s, err := svc.Suppliers.Create(ctx, fields[0], fields[1], fields[2])
		if err != nil {
			return err
		}
		fmt.Println(s.ID)
		return nil
	case "list":
		all, err := svc.Suppliers.All(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTAX ID\tIBAN")
		for _, s := range all {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.TaxID, s.Iban)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown suppliers command %q (want add or list)", args[0])
	}
}
