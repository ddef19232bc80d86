package main

import (
	"github.com/spf13/cobra"
)

func (a *app) connectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Manage bank feed connections",
	}

	var redirectURI string

	createCmd := &cobra.Command{
		Use:   "create [authorization-code]",
		Short: "Exchange an OAuth consent code for a new connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.client.Connect(cmd.Context(), args[0], redirectURI)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), conn)
		},
	}
	createCmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect uri used for the consent")

	var revoked bool

	disconnectCmd := &cobra.Command{
		Use:   "disconnect [connection-id]",
		Short: "Wipe the credentials of a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.client.Disconnect(cmd.Context(), args[0], revoked)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), conn)
		},
	}
	disconnectCmd.Flags().BoolVar(&revoked, "revoked", false, "mark the consent as revoked by the user")

	cmd.AddCommand(createCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "get [connection-id]",
		Short: "Show a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.client.GetConnection(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), conn)
		},
	})
	cmd.AddCommand(disconnectCmd)

	return cmd
}
