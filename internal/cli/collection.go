package cli

import (
	"github.com/spf13/cobra"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage vector collections",
}

var (
	createDescription string
	createDimension   int
)

var collectionCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a collection and its vector table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp(cmd)
		if err != nil {
			return err
		}
		col, err := a.Collections.Create(cmd.Context(), args[0], createDescription, createDimension)
		if err != nil {
			return err
		}
		cmd.Printf("Created collection %q (dimension %d)\n", col.Name, col.Dimension)
		return nil
	},
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active collections",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := requireApp(cmd)
		if err != nil {
			return err
		}
		infos, err := a.Collections.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			cmd.Println("No collections.")
			return nil
		}
		for _, info := range infos {
			cmd.Printf("  %-30s dim=%-5d vectors=%d\n",
				info.Collection.Name, info.Collection.Dimension, info.VectorCount)
		}
		return nil
	},
}

var collectionShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show one collection's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp(cmd)
		if err != nil {
			return err
		}
		info, err := a.Collections.Show(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Name:        %s\n", info.Collection.Name)
		cmd.Printf("Description: %s\n", info.Collection.Description)
		cmd.Printf("Dimension:   %d\n", info.Collection.Dimension)
		cmd.Printf("Vectors:     %d\n", info.VectorCount)
		cmd.Printf("Created:     %s\n", info.Collection.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var collectionRenameCmd = &cobra.Command{
	Use:   "rename [old-name] [new-name]",
	Short: "Rename a collection and its vector table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp(cmd)
		if err != nil {
			return err
		}
		col, err := a.Collections.Rename(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Printf("Renamed collection to %q\n", col.Name)
		return nil
	},
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Soft-delete a collection (recoverable metadata, vectors dropped)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp(cmd)
		if err != nil {
			return err
		}
		if err := a.Collections.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Deleted collection %q (metadata kept for %d days)\n",
			args[0], a.Cleanup.RetentionDays())
		return nil
	},
}

func init() {
	collectionCreateCmd.Flags().StringVarP(&createDescription, "description", "d", "", "collection description")
	collectionCreateCmd.Flags().IntVar(&createDimension, "dimension", 1024, "vector dimension")

	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionShowCmd)
	collectionCmd.AddCommand(collectionRenameCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
	rootCmd.AddCommand(collectionCmd)
}
