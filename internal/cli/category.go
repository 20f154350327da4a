package cli

import (
	"github.com/spf13/cobra"

	"catalog-service/internal/repo"
	"catalog-service/internal/service"
)

func newMigrateCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.Migrate(a.DB); err != nil {
				return err
			}
			return printResult(cmd, opts.Output, "migrated")
		},
	}
}

func NewCategoryCmd(opts *RootOptions) *cobra.Command {
	command := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}
	command.AddCommand(
		newCategoryCreateCmd(opts),
		newCategoryUpdateCmd(opts),
		newCategoryDeleteCmd(opts),
		newCategoryRestoreCmd(opts),
		newCategoryGetCmd(opts),
		newCategoryTreeCmd(opts),
		newCategoryListCmd(opts),
		newCategoryAncestorsCmd(opts),
		newCategoryDescendantsCmd(opts),
		newCategoryValidateCmd(opts),
	)
	return command
}

// run 取服务、执行、按格式输出
func run(cmd *cobra.Command, opts *RootOptions, fn func(svc *service.CategoryService) (any, error)) error {
	a, err := opts.App(cmd.Context())
	if err != nil {
		return err
	}
	out, err := fn(a.Service)
	if err != nil {
		return printError(cmd, opts.Output, err)
	}
	return printResult(cmd, opts.Output, out)
}

func optional(cmd *cobra.Command, name, v string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func newCategoryCreateCmd(opts *RootOptions) *cobra.Command {
	var in service.CreateInput
	var parent string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			in.ParentID = optional(cmd, "parent", parent)
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				return svc.Create(cmd.Context(), in)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "parent category id")
	cmd.Flags().IntVar(&in.Level, "level", 0, "level: 0 brand, 1 category, 2 subcategory")
	cmd.Flags().IntVar(&in.SortOrder, "sort", 0, "sort order among siblings")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	return cmd
}

func newCategoryUpdateCmd(opts *RootOptions) *cobra.Command {
	var (
		name, description, parent string
		level, sortOrder          int
		active, toRoot            bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename, move or edit a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			p := service.Patch{
				Name:        optional(cmd, "name", name),
				Description: optional(cmd, "description", description),
				ParentID:    optional(cmd, "parent", parent),
				SetParent:   f.Changed("parent") || toRoot,
			}
			if f.Changed("level") {
				p.Level = &level
			}
			if f.Changed("sort") {
				p.SortOrder = &sortOrder
			}
			if f.Changed("active") {
				p.IsActive = &active
			}
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				return svc.Update(cmd.Context(), args[0], p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&parent, "parent", "", "new parent id")
	cmd.Flags().BoolVar(&toRoot, "root", false, "move to root level (combine with --level 0)")
	cmd.Flags().IntVar(&level, "level", 0, "new level")
	cmd.Flags().IntVar(&sortOrder, "sort", 0, "new sort order")
	cmd.Flags().BoolVar(&active, "active", true, "active flag")
	cmd.MarkFlagsMutuallyExclusive("parent", "root")
	return cmd
}

func newCategoryDeleteCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a category without subcategories or products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				if err := svc.Delete(cmd.Context(), args[0]); err != nil {
					return nil, err
				}
				return map[string]any{"id": args[0], "deleted": true}, nil
			})
		},
	}
}

func newCategoryRestoreCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a soft-deleted category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				return svc.Restore(cmd.Context(), args[0])
			})
		},
	}
}

func newCategoryGetCmd(opts *RootOptions) *cobra.Command {
	var byPath bool
	cmd := &cobra.Command{
		Use:   "get <id|path>",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				if byPath {
					return svc.GetByPath(cmd.Context(), args[0])
				}
				return svc.Get(cmd.Context(), args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&byPath, "path", false, "treat the argument as a materialized path")
	return cmd
}

func newCategoryTreeCmd(opts *RootOptions) *cobra.Command {
	var rootLevel int
	var inactive bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the category tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				return svc.BuildTree(cmd.Context(), rootLevel, inactive)
			})
		},
	}
	cmd.Flags().IntVar(&rootLevel, "root-level", 0, "level of the tree roots")
	cmd.Flags().BoolVar(&inactive, "include-inactive", false, "include inactive categories")
	return cmd
}

func newCategoryListCmd(opts *RootOptions) *cobra.Command {
	var (
		o      service.ListOptions
		level  int
		parent string
		active bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories with filters and search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("level") {
				o.Level = &level
			}
			if f.Changed("active") {
				o.IsActive = &active
			}
			o.ParentID = optional(cmd, "parent", parent)
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				return svc.List(cmd.Context(), o)
			})
		},
	}
	cmd.Flags().IntVar(&o.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&o.Limit, "limit", 0, "page size")
	cmd.Flags().StringVar(&o.Search, "search", "", "case-insensitive name search")
	cmd.Flags().IntVar(&level, "level", 0, "only this level")
	cmd.Flags().StringVar(&parent, "parent", "", "only children of this id")
	cmd.Flags().BoolVar(&active, "active", true, "only active (true) or inactive (false)")
	return cmd
}

func newCategoryAncestorsCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ancestors <id>",
		Short: "List ancestors from root to direct parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				return svc.GetAncestors(cmd.Context(), args[0])
			})
		},
	}
}

func newCategoryDescendantsCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "descendants <id>",
		Short: "List the whole subtree below a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				return svc.GetDescendants(cmd.Context(), args[0])
			})
		},
	}
}

func newCategoryValidateCmd(opts *RootOptions) *cobra.Command {
	var in service.HierarchyInput
	var parent string
	cmd := &cobra.Command{
		Use:   "validate <name>",
		Short: "Dry-run hierarchy validation without writing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			in.ParentID = optional(cmd, "parent", parent)
			return run(cmd, opts, func(svc *service.CategoryService) (any, error) {
				return svc.ValidateHierarchy(cmd.Context(), in)
			})
		},
	}
	cmd.Flags().StringVar(&in.ID, "id", "", "existing category id (update scenario)")
	cmd.Flags().StringVar(&parent, "parent", "", "parent category id")
	cmd.Flags().IntVar(&in.Level, "level", 0, "level")
	return cmd
}
