package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nusabooks-cli",
		Short: "NusaBooks CLI tool",
		Long:  `A command line interface for interacting with the NusaBooks API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the NusaBooks API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Report commands
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Report operations",
	}

	var asOf string
	trialBalanceCmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if asOf != "" {
				query.Set("as_of", asOf)
			}
			getJSON("/api/v1/reports/trial-balance", query)
		},
	}
	trialBalanceCmd.Flags().StringVar(&asOf, "as-of", "", "Report date (YYYY-MM-DD)")

	var agingKind, agingAsOf string
	agingCmd := &cobra.Command{
		Use:   "aging",
		Short: "Print the receivable or payable aging report",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			query.Set("kind", agingKind)
			if agingAsOf != "" {
				query.Set("as_of", agingAsOf)
			}
			getJSON("/api/v1/reports/aging", query)
		},
	}
	agingCmd.Flags().StringVar(&agingKind, "kind", "receivable", "Document kind: receivable or payable")
	agingCmd.Flags().StringVar(&agingAsOf, "as-of", "", "Report date (YYYY-MM-DD)")

	var vatOutput, vatInput, vatStart, vatEnd string
	netVATCmd := &cobra.Command{
		Use:   "net-vat",
		Short: "Print output tax netted against input tax",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			query.Set("output_account_id", vatOutput)
			query.Set("input_account_id", vatInput)
			if vatStart != "" {
				query.Set("start_date", vatStart)
			}
			if vatEnd != "" {
				query.Set("end_date", vatEnd)
			}
			getJSON("/api/v1/reports/net-vat", query)
		},
	}
	netVATCmd.Flags().StringVar(&vatOutput, "output-account", "", "Output tax account ID")
	netVATCmd.Flags().StringVar(&vatInput, "input-account", "", "Input tax account ID")
	netVATCmd.Flags().StringVar(&vatStart, "start", "", "Period start (YYYY-MM-DD)")
	netVATCmd.Flags().StringVar(&vatEnd, "end", "", "Period end (YYYY-MM-DD)")
	netVATCmd.MarkFlagRequired("output-account")
	netVATCmd.MarkFlagRequired("input-account")

	reportCmd.AddCommand(trialBalanceCmd, agingCmd, netVATCmd)
	rootCmd.AddCommand(reportCmd)

	// Schedule commands
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule operations",
	}

	var autopostAsOf string
	autopostCmd := &cobra.Command{
		Use:   "autopost",
		Short: "Post every due entry of active auto-post schedules",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if autopostAsOf != "" {
				query.Set("as_of", autopostAsOf)
			}
			postJSON("/api/v1/schedules/autopost", query, nil)
		},
	}
	autopostCmd.Flags().StringVar(&autopostAsOf, "as-of", "", "Due date cutoff (YYYY-MM-DD)")

	scheduleCmd.AddCommand(autopostCmd)
	rootCmd.AddCommand(scheduleCmd)

	// Template commands
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Template operations",
	}

	var previewDate, previewDesc string
	var previewAmount float64
	previewCmd := &cobra.Command{
		Use:   "preview <template-id>",
		Short: "Preview a template execution without posting",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			date := previewDate
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			body := map[string]any{
				"date":        date + "T00:00:00Z",
				"amount":      fmt.Sprintf("%.2f", previewAmount),
				"description": previewDesc,
			}
			postJSON("/api/v1/templates/"+args[0]+"/preview", nil, body)
		},
	}
	previewCmd.Flags().StringVar(&previewDate, "date", "", "Execution date (YYYY-MM-DD)")
	previewCmd.Flags().Float64Var(&previewAmount, "amount", 0, "Amount to execute against")
	previewCmd.Flags().StringVar(&previewDesc, "description", "", "Journal description")
	previewCmd.MarkFlagRequired("amount")

	templateCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(templateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getJSON(path string, query url.Values) {
	client := &http.Client{Timeout: timeout}

	target := baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := client.Get(target)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func postJSON(path string, query url.Values, body any) {
	client := &http.Client{Timeout: timeout}

	target := baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		payload = bytes.NewReader(data)
	}

	resp, err := client.Post(target, "application/json", payload)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func printResponse(resp *http.Response) {
	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(data))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}

	fmt.Println(pretty.String())
}
