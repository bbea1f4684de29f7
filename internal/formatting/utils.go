package formatting

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/giantswarm/sessionctl/internal/api"
)

// PrettyJSON formats any value as indented JSON for human-readable display.
// It handles marshaling errors gracefully by falling back to fmt.Sprintf.
//
// Example:
//
//	data := map[string]interface{}{"name": "test", "value": 42}
//	fmt.Println(formatting.PrettyJSON(data))
//	// Output:
//	// {
//	//   "name": "test",
//	//   "value": 42
//	// }
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// rowsFor flattens a single result into ordered key/value rows.
func rowsFor(data interface{}) [][2]string {
	switch d := data.(type) {
	case api.DeployResult:
		rows := [][2]string{{"Outcome", string(d.Outcome)}}
		if d.Response != nil {
			rows = append(rows,
				[2]string{"Cluster ID", d.Response.ClusterID},
				[2]string{"Web UI", d.Response.WebInterfaceURL})
		} else {
			rows = append(rows, [2]string{"Note", "no reachable endpoint yet, retry or check the cluster"})
		}
		return rows
	case *api.SubmitResponse:
		return [][2]string{
			{"Cluster ID", d.ClusterID},
			{"Job ID", d.JobID},
			{"Web UI", d.WebInterfaceURL},
		}
	case *api.CancelResponse:
		return [][2]string{
			{"Cluster ID", d.ClusterID},
			{"Job ID", d.JobID},
			{"Cancelled", strconv.FormatBool(d.Cancelled)},
			{"Status", d.Status},
		}
	case *api.SavepointResponse:
		return [][2]string{
			{"Cluster ID", d.ClusterID},
			{"Job ID", d.JobID},
			{"Location", d.Location},
		}
	case *api.ShutDownResponse:
		return [][2]string{{"Cluster ID", d.ClusterID}}
	case []api.ClusterSummary:
		rows := make([][2]string, 0, len(d))
		for _, c := range d {
			rows = append(rows, [2]string{c.ClusterID, c.State + " (" + c.FinalStatus + ")"})
		}
		return rows
	case map[string]string:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][2]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, [2]string{k, d[k]})
		}
		return rows
	case nil:
		return nil
	default:
		return [][2]string{{"Value", fmt.Sprintf("%v", d)}}
	}
}

// identifierOf returns the cluster identity a result refers to.
func identifierOf(data interface{}) string {
	switch d := data.(type) {
	case api.DeployResult:
		if d.Response != nil {
			return d.Response.ClusterID
		}
	case *api.CancelResponse:
		return d.ClusterID
	case *api.ShutDownResponse:
		return d.ClusterID
	}
	return ""
}

// formatAge renders the time elapsed since t the way kubectl does (5s, 3m, 2h, 4d).
func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return "<unknown>"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
