package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	v1 "github.com/stacklok/listonic-sync/internal/api/v1"
	"github.com/stacklok/listonic-sync/internal/httpclient"
)

const (
	defaultServerURL = "http://localhost:8080"
	queryTimeout     = 15 * time.Second
)

// queryClient reads from the /v1 API of a running server
type queryClient struct {
	base string
	http httpclient.Client
}

func newQueryClient(server string) *queryClient {
	return &queryClient{base: server, http: httpclient.NewDefaultClient(queryTimeout)}
}

func (q *queryClient) accounts(ctx context.Context) (*v1.AccountsResponse, error) {
	var resp v1.AccountsResponse
	if err := q.get(ctx, "/v1/accounts", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (q *queryClient) lists(ctx context.Context, account string, archived *bool, search string) (*v1.ListsResponse, error) {
	params := url.Values{}
	if archived != nil {
		params.Set("archived", strconv.FormatBool(*archived))
	}
	if search != "" {
		params.Set("search", search)
	}

	var resp v1.ListsResponse
	if err := q.get(ctx, "/v1/accounts/"+url.PathEscape(account)+"/lists", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (q *queryClient) get(ctx context.Context, path string, params url.Values, out any) error {
	target, err := url.JoinPath(q.base, path)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", q.base, err)
	}
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	data, err := q.http.Get(ctx, target)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", target, err)
	}
	return nil
}

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Show the accounts served by a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, _ := cmd.Flags().GetString("server")
			resp, err := newQueryClient(server).accounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to query accounts: %w", err)
			}
			return renderAccounts(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().String("server", defaultServerURL, "Base URL of the listonic-sync server")
	return cmd
}

func newListsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists ACCOUNT",
		Short: "Show the cached lists of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			search, _ := cmd.Flags().GetString("search")

			var archived *bool
			if cmd.Flags().Changed("archived") {
				value, _ := cmd.Flags().GetBool("archived")
				archived = &value
			}

			resp, err := newQueryClient(server).lists(cmd.Context(), args[0], archived, search)
			if err != nil {
				return fmt.Errorf("failed to query lists: %w", err)
			}
			return renderLists(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().String("server", defaultServerURL, "Base URL of the listonic-sync server")
	cmd.Flags().Bool("archived", false, "Only show archived (true) or active (false) lists")
	cmd.Flags().String("search", "", "Only show lists whose name contains this text")
	return cmd
}

func renderAccounts(w io.Writer, resp *v1.AccountsResponse) error {
	table := tablewriter.NewWriter(w)
	table.Header("Name", "Lists", "Items", "Last Update", "Reauth")
	for _, acc := range resp.Accounts {
		last := "never"
		if acc.LastUpdateSuccessTime != nil {
			last = acc.LastUpdateSuccessTime.Format(time.RFC3339)
		}
		if !acc.LastUpdateSuccess {
			last += " (failed)"
		}
		if err := table.Append(
			acc.Name,
			strconv.Itoa(acc.ListCount),
			strconv.Itoa(acc.ItemCount),
			last,
			strconv.FormatBool(acc.NeedsReauth),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderLists(w io.Writer, resp *v1.ListsResponse) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Items", "Checked", "Archived")
	for _, list := range resp.Lists {
		checked := 0
		for _, item := range list.Items {
			if item.IsChecked {
				checked++
			}
		}
		if err := table.Append(
			strconv.FormatInt(list.ID, 10),
			list.Name,
			strconv.Itoa(len(list.Items)),
			strconv.Itoa(checked),
			strconv.FormatBool(list.IsArchived),
		); err != nil {
			return err
		}
	}
	return table.Render()
}
