// Command coverage asks a running API for the observance of every Sunday
// (or every day) in a range of years and reports the dates the tables do
// not cover, grouped by season.
//
// Usage:
//
//	go run ./cmd/coverage -url http://localhost:8080 -start 2025 -years 3
//	go run ./cmd/coverage -all -o coverage.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/zapponejosh/ordinarium/internal/calendar"
	"github.com/zapponejosh/ordinarium/internal/ics"
)

// APIResponse matches the API response structure
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type observanceData struct {
	Date     string  `json:"date"`
	Title    *string `json:"title"`
	Handle   *string `json:"handle"`
	Season   *string `json:"season"`
	Subcycle *string `json:"subcycle"`
}

// TestResult holds the result for a single date
type TestResult struct {
	Date     string `json:"date"`
	Success  bool   `json:"success"`
	Season   string `json:"season"`
	Handle   string `json:"handle,omitempty"`
	Title    string `json:"title,omitempty"`
	Subcycle string `json:"subcycle,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SeasonStats tracks statistics for each season
type SeasonStats struct {
	Season      string   `json:"season"`
	TotalDays   int      `json:"total_days"`
	SuccessDays int      `json:"success_days"`
	FailedDates []string `json:"failed_dates"`
}

// Analysis holds the analyzed results
type Analysis struct {
	TotalDays    int                     `json:"total_days"`
	TotalSuccess int                     `json:"total_success"`
	TotalFailed  int                     `json:"total_failed"`
	BySeason     map[string]*SeasonStats `json:"by_season"`
	ByYear       map[int][2]int          `json:"by_year"` // success, total
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	startYear := flag.Int("start", time.Now().Year(), "Start year")
	years := flag.Int("years", 4, "Number of years to test")
	all := flag.Bool("all", false, "Test every day, not only Sundays")
	verbose := flag.Bool("v", false, "Verbose output (show each date)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	endYear := *startYear + *years - 1

	fmt.Println("================================================================")
	fmt.Println("Ordinarium API - Observance Coverage")
	fmt.Println("================================================================")
	fmt.Printf("Base URL:    %s\n", *baseURL)
	fmt.Printf("Date Range:  %d-01-01 to %d-12-31\n", *startYear, endYear)
	fmt.Printf("Every day:   %v\n", *all)
	fmt.Println()

	// Check if server is reachable
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	dates := datesToTest(*startYear, endYear, *all)
	fmt.Printf("Testing %d dates...\n\n", len(dates))

	ctx := context.Background()
	results := make([]TestResult, 0, len(dates))
	for _, d := range dates {
		r := testDate(ctx, client, *baseURL, d)
		results = append(results, r)
		if *verbose {
			status := "✓"
			if !r.Success {
				status = "✗"
			}
			fmt.Printf("  %s %s %-16s %s %s\n", status, r.Date, r.Season, r.Title, r.Error)
		}
	}

	analysis := analyzeResults(results)
	printSummary(analysis, *startYear, endYear)

	if *outputFile != "" {
		if err := saveResults(*outputFile, results, analysis); err != nil {
			fmt.Printf("Error saving results: %v\n", err)
		} else {
			fmt.Printf("Results saved to %s\n", *outputFile)
		}
	}

	// Exit with error code if there were failures
	if analysis.TotalFailed > 0 {
		os.Exit(1)
	}
}

func datesToTest(startYear, endYear int, all bool) []time.Time {
	from := calendar.Date(startYear, time.January, 1)
	to := calendar.Date(endYear, time.December, 31)
	if !all {
		return ics.Sundays(from, to)
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func testDate(ctx context.Context, client *http.Client, baseURL string, date time.Time) TestResult {
	dateStr := calendar.FormatDate(date)
	result := TestResult{Date: dateStr, Season: calendar.ResolveSeason(date).String()}

	url := fmt.Sprintf("%s/api/v1/observance?date=%s", baseURL, dateStr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("Connection error: %v", err)
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("Read error: %v", err)
		return result
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		result.Error = fmt.Sprintf("Parse error: %v", err)
		return result
	}
	if !apiResp.Success {
		result.Error = "Unknown error"
		if apiResp.Error != nil {
			result.Error = apiResp.Error.Message
		}
		return result
	}

	var data observanceData
	if err := json.Unmarshal(apiResp.Data, &data); err != nil {
		result.Error = fmt.Sprintf("Data parse error: %v", err)
		return result
	}
	if data.Season != nil {
		result.Season = *data.Season
	}
	if data.Subcycle != nil {
		result.Subcycle = *data.Subcycle
	}
	if data.Handle == nil || data.Title == nil {
		result.Error = "No observance"
		return result
	}

	result.Success = true
	result.Handle = *data.Handle
	result.Title = *data.Title
	return result
}

func analyzeResults(results []TestResult) *Analysis {
	analysis := &Analysis{
		BySeason: make(map[string]*SeasonStats),
		ByYear:   make(map[int][2]int),
	}

	for _, r := range results {
		analysis.TotalDays++

		date, _ := calendar.ParseDateString(r.Date)
		year := analysis.ByYear[date.Year()]
		year[1]++

		season := r.Season
		if season == "" {
			season = "(unknown)"
		}
		stats, ok := analysis.BySeason[season]
		if !ok {
			stats = &SeasonStats{Season: season}
			analysis.BySeason[season] = stats
		}
		stats.TotalDays++

		if r.Success {
			analysis.TotalSuccess++
			stats.SuccessDays++
			year[0]++
		} else {
			analysis.TotalFailed++
			stats.FailedDates = append(stats.FailedDates, r.Date)
		}
		analysis.ByYear[date.Year()] = year
	}

	return analysis
}

func printSummary(analysis *Analysis, startYear, endYear int) {
	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")
	if analysis.TotalDays == 0 {
		fmt.Println("Nothing tested.")
		return
	}
	fmt.Printf("Dates Tested: %d\n", analysis.TotalDays)
	fmt.Printf("Covered:      %d (%.1f%%)\n", analysis.TotalSuccess,
		float64(analysis.TotalSuccess)/float64(analysis.TotalDays)*100)
	fmt.Printf("Uncovered:    %d\n", analysis.TotalFailed)
	fmt.Println()

	fmt.Println("By Year:")
	for year := startYear; year <= endYear; year++ {
		if stats, ok := analysis.ByYear[year]; ok {
			fmt.Printf("  %d: %d/%d covered\n", year, stats[0], stats[1])
		}
	}
	fmt.Println()

	if analysis.TotalFailed == 0 {
		fmt.Println("Every date has an observance.")
		return
	}

	fmt.Println("Uncovered by season:")

	// Sort seasons by failure count
	var seasons []*SeasonStats
	for _, stats := range analysis.BySeason {
		if len(stats.FailedDates) > 0 {
			seasons = append(seasons, stats)
		}
	}
	sort.Slice(seasons, func(i, j int) bool {
		return len(seasons[i].FailedDates) > len(seasons[j].FailedDates)
	})

	for _, stats := range seasons {
		fmt.Printf("\n%s: %d uncovered\n", stats.Season, len(stats.FailedDates))
		for i, date := range stats.FailedDates {
			if i == 5 {
				fmt.Printf("  ... and %d more\n", len(stats.FailedDates)-5)
				break
			}
			fmt.Printf("  - %s\n", date)
		}
	}
	fmt.Println()
}

func saveResults(path string, results []TestResult, analysis *Analysis) error {
	data, err := json.MarshalIndent(map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"analysis":     analysis,
		"results":      results,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
