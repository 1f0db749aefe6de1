package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/pkg/apiclient"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/form"
	"github.com/jwalitptl/optica-admin/pkg/mutation"
)

func (a *app) notifier() form.Notifier {
	return form.NotifierFunc(func(level form.Level, message string) {
		fmt.Fprintf(a.out, "[%s] %s\n", level, message)
	})
}

func printFieldErrors(out io.Writer, errs map[string]string) {
	names := make([]string, 0, len(errs))
	for n := range errs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(out, "  %s: %s\n", n, errs[n])
	}
}

func newDispatcher[T any](a *app, kind string) *mutation.Dispatcher[T] {
	zl := a.log.Zerolog()
	return mutation.New(mutation.Config[T]{
		Backend: apiclient.NewResource[T](a.client, kind),
		Cache:   a.cache,
		Logger:  &zl,
	})
}

func newBrandsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "brands", Short: "Manage brands"}

	var name, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a brand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brands := newDispatcher[model.Brand](a, "brands")
			dialog := form.NewDialog(form.DialogConfig[model.BrandInput]{
				Submit: func(ctx context.Context, in model.BrandInput) (model.BrandInput, error) {
					b, err := brands.Create(ctx, in)
					if err == nil {
						fmt.Fprintf(a.out, "brand %d created\n", b.ID)
					}
					return in, err
				},
				Pending:  brands.Pending,
				Notifier: a.notifier(),
				Success:  "Brand saved.",
			})

			in := model.BrandInput{Name: strings.TrimSpace(name), Status: model.StatusActive}
			if d := strings.TrimSpace(description); d != "" {
				in.Description = &d
			}
			dialog.Open(in)
			if _, err := dialog.Submit(cmd.Context()); err != nil {
				printFieldErrors(a.out, dialog.Draft().Errors())
				return err
			}
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "brand name")
	create.Flags().StringVar(&description, "description", "", "optional description")

	cmd.AddCommand(create)
	return cmd
}

func patientWizard() *form.Wizard {
	steps := make([]form.Step, len(model.PatientSteps))
	for i, s := range model.PatientSteps {
		steps[i] = form.Step{ID: s.ID, Title: s.Title, Fields: s.Fields}
	}
	return form.NewWizard(nil, steps...)
}

func readPatientDraft(path string) (model.PatientInput, error) {
	var in model.PatientInput
	raw, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("invalid draft %s: %w", path, err)
	}
	return in, nil
}

func newPatientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "patients", Short: "Manage patients"}

	var file string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a patient from a JSON draft, step by step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readPatientDraft(file)
			if err != nil {
				return err
			}
			return a.createPatient(cmd.Context(), in)
		},
	}
	create.Flags().StringVar(&file, "file", "", "patient draft as JSON")
	_ = create.MarkFlagRequired("file")

	cmd.AddCommand(create)
	return cmd
}

// createPatient walks every wizard step, stopping at the first one with
// invalid fields, then submits through the dialog.
func (a *app) createPatient(ctx context.Context, in model.PatientInput) error {
	patients := newDispatcher[model.Patient](a, "patients")
	wizard := patientWizard()
	dialog := form.NewDialog(form.DialogConfig[model.PatientInput]{
		Submit: func(ctx context.Context, in model.PatientInput) (model.PatientInput, error) {
			p, err := patients.Create(ctx, in)
			if err == nil {
				fmt.Fprintf(a.out, "patient %d created\n", p.ID)
			}
			return in, err
		},
		Pending:  patients.Pending,
		Wizard:   wizard,
		Notifier: a.notifier(),
		Success:  "Patient saved.",
	})
	dialog.Open(in)

	for {
		step := wizard.Current()
		fmt.Fprintf(a.out, "step %d/%d: %s\n", wizard.Index()+1, len(wizard.Steps()), step.Title)
		last := wizard.IsLast()
		if err := wizard.Next(dialog.Draft().Value()); err != nil {
			var se *form.StepError
			if errors.As(err, &se) {
				for field, msgs := range se.Fields {
					fmt.Fprintf(a.out, "  %s: %s\n", field, strings.Join(msgs, " "))
				}
			}
			return err
		}
		if last {
			break
		}
	}

	if _, err := dialog.Submit(ctx); err != nil {
		printFieldErrors(a.out, dialog.Draft().Errors())
		fmt.Fprintf(a.out, "fix the %s step and try again\n", wizard.Current().ID)
		return err
	}
	return nil
}

func newDiscountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "discounts", Short: "Approve or reject discount requests"}

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending discount request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.decide(cmd.Context(), args[0], "approve", "")
		},
	})

	var reason string
	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending discount request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.decide(cmd.Context(), args[0], "reject", reason)
		},
	}
	reject.Flags().StringVar(&reason, "reason", "", "rejection reason (required)")

	cmd.AddCommand(reject)
	return cmd
}

func (a *app) decide(ctx context.Context, id, action, reason string) error {
	var payload any
	if action == "reject" {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return apperrors.FieldError("rejection_reason", "The rejection reason field is required.")
		}
		payload = model.RejectDiscountInput{RejectionReason: reason}
	}

	d, err := newDispatcher[model.DiscountRequest](a, "discount-requests").Action(ctx, id, action, payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "discount request %d %s\n", d.ID, d.Status)
	return nil
}

func newDocumentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "documents", Short: "Generated PDF documents"}
	cmd.AddCommand(&cobra.Command{
		Use:   "url <kind> <id>",
		Short: "Print a download URL that carries its own pdf_token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := a.client.DocumentURL(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, tok.URL)
			if !tok.ExpiresAt.IsZero() {
				fmt.Fprintf(a.out, "expires %s\n", tok.ExpiresAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	})
	return cmd
}
