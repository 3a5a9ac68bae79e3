package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var locationName string

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Manage locations",
}

var locationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a location and print its id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close() //nolint:errcheck

		return runLocationAdd(ctx, st, locationName, os.Stdout)
	},
}

type locationCreator interface {
	CreateLocation(ctx context.Context, name string) (string, error)
}

func runLocationAdd(ctx context.Context, st locationCreator, name string, w io.Writer) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return eris.New("location name is required")
	}
	id, err := st.CreateLocation(ctx, name)
	if err != nil {
		return eris.Wrap(err, "create location")
	}
	_, err = fmt.Fprintf(w, "location_id=%s\n", id)
	return err
}

func init() {
	locationAddCmd.Flags().StringVar(&locationName, "name", "", "location name (required)")
	_ = locationAddCmd.MarkFlagRequired("name")
	locationCmd.AddCommand(locationAddCmd)
	rootCmd.AddCommand(locationCmd)
}
