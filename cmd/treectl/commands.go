package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/categorias-api/docs"
	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
	infrapdf "github.com/jhoicas/categorias-api/internal/infrastructure/pdf"
	"github.com/jhoicas/categorias-api/internal/infrastructure/store"
	"github.com/jhoicas/categorias-api/internal/infrastructure/xmlexport"
	"github.com/jhoicas/categorias-api/pkg/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "treectl",
		Short:         "Administración del árbol de categorías",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newTreeCmd(),
		newCheckCmd(),
		newExportCmd(),
		newOpenAPICmd(),
	)
	return root
}

// withBackend carga la configuración, abre el almacenamiento y lo cierra al terminar fn.
func withBackend(ctx context.Context, fn func(b *store.Backend) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	b, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema pendiente",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd.Context(), func(b *store.Backend) error {
				applied, err := b.Migrate(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(applied) == 0 {
					fmt.Fprintf(out, "%s: esquema al día\n", b.Driver)
					return nil
				}
				for _, name := range applied {
					fmt.Fprintf(out, "%s: aplicada %s\n", b.Driver, name)
				}
				return nil
			})
		},
	}
}

func newTreeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Imprime el bosque ordenado por nombre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd.Context(), func(b *store.Backend) error {
				uc := appcategory.NewUseCase(b.Repo, b.Tx)
				forest, err := uc.ListTree(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(forest)
				}
				all, err := b.Repo.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				printForest(cmd.OutOrStdout(), tree.BuildForest(all))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "salida JSON ({count, items})")
	return cmd
}

func printForest(w io.Writer, forest []*entity.CategoryNode) {
	if len(forest) == 0 {
		fmt.Fprintln(w, "(sin categorías)")
		return
	}
	tree.Walk(forest, func(n *entity.CategoryNode, depth int) {
		c := n.Category
		marker := ""
		if c.Status == entity.CategoryInactive {
			marker = " [inactive]"
		}
		fmt.Fprintf(w, "%s%s%s  (%s)\n", strings.Repeat("  ", depth), c.Name, marker, c.ID)
	})
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Audita nivel, path, ciclos y referencias al padre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd.Context(), func(b *store.Backend) error {
				all, err := b.Repo.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				violations := tree.Verify(all)
				out := cmd.OutOrStdout()
				if len(violations) == 0 {
					fmt.Fprintf(out, "ok: %d categorías consistentes\n", len(all))
					return nil
				}
				for _, v := range violations {
					fmt.Fprintln(out, v.String())
				}
				return fmt.Errorf("%d inconsistencias en %d categorías", len(violations), len(all))
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exporta el bosque a XML o PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "xml" && format != "pdf" {
				return fmt.Errorf("formato inválido %q: use xml o pdf", format)
			}
			return withBackend(cmd.Context(), func(b *store.Backend) error {
				uc := appcategory.NewUseCase(b.Repo, b.Tx,
					appcategory.WithExporters(xmlexport.NewTreeExporter(), infrapdf.NewTreeReportGenerator("")))
				var (
					doc    []byte
					digest string
					err    error
				)
				if format == "xml" {
					doc, digest, err = uc.ExportXML(cmd.Context())
				} else {
					doc, err = uc.ExportPDF(cmd.Context())
				}
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), output, doc); err != nil {
					return err
				}
				if digest != "" && output != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "sha256 canónico: %s\n", digest)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xml", "xml o pdf")
	cmd.Flags().StringVarP(&output, "out", "o", "", "archivo de salida (por defecto stdout)")
	return cmd
}

func newOpenAPICmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Escribe el documento Swagger registrado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeOutput(cmd.OutOrStdout(), output, []byte(docs.SwaggerInfo.ReadDoc()))
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "archivo de salida, p. ej. docs/swagger.json")
	return cmd
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
