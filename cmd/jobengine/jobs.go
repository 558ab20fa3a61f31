package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var apiBaseURL string

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and control jobs on a running jobengine server",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs known to the server",
	RunE:  runJobsList,
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsCancel,
}

var jobsRerunCmd = &cobra.Command{
	Use:   "rerun <job-id>",
	Short: "Resubmit a terminal job from scratch",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsRerun,
}

func init() {
	jobsCmd.PersistentFlags().StringVar(&apiBaseURL, "api", "http://localhost:8000", "jobengine server base URL")
	jobsCmd.AddCommand(jobsListCmd, jobsCancelCmd, jobsRerunCmd)
	rootCmd.AddCommand(jobsCmd)
}

// jobView mirrors internal/handlers.JobResponse's wire shape; kept separate
// so the CLI depends on the HTTP contract, not on handler types.
type jobView struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Label    string `json:"label,omitempty"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

func runJobsList(cmd *cobra.Command, args []string) error {
	var body struct {
		Jobs []jobView `json:"jobs"`
	}
	if err := getJSON(apiBaseURL+"/api/v1/jobs", &body); err != nil {
		return err
	}
	for _, j := range body.Jobs {
		fmt.Printf("%s  %-12s  %-10s  %s\n", j.ID, j.Kind, colorizeStatus(j.Status), j.Label)
	}
	return nil
}

func runJobsCancel(cmd *cobra.Command, args []string) error {
	var j jobView
	return postJSON(apiBaseURL+"/api/v1/jobs/"+args[0]+"/cancel", nil, &j)
}

func runJobsRerun(cmd *cobra.Command, args []string) error {
	var j jobView
	return postJSON(apiBaseURL+"/api/v1/jobs/"+args[0]+"/rerun", nil, &j)
}

func colorizeStatus(status string) string {
	switch status {
	case "done":
		return color.GreenString(status)
	case "failed":
		return color.RedString(status)
	case "cancelled":
		return color.YellowString(status)
	case "running":
		return color.CyanString(status)
	default:
		return status
	}
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func getJSON(url string, out any) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeOrError(resp, out)
}

func postJSON(url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	resp, err := httpClient.Post(url, "application/json", reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeOrError(resp, out)
}

func decodeOrError(resp *http.Response, out any) error {
	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("%s: %s", resp.Status, errBody.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
