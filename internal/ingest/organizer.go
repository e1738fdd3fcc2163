package ingest

import (
	"path"
	"strings"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/utils"
)

const optimizeSuffix = ".optimize"

// Job describes what a file dropped in the imports bucket asks for.
type Job struct {
	Key      string
	SetName  string
	Optimize bool
}

// ParseKey turns "crates/Friday_Night.optimize.csv" into a job for set
// "Friday Night" that also reorders it. Non-CSV keys are not jobs.
func ParseKey(key string) (Job, bool) {
	if strings.HasSuffix(key, "/") {
		return Job{}, false
	}
	base := path.Base(key)
	if !strings.EqualFold(path.Ext(base), ".csv") {
		return Job{}, false
	}

	name := base[:len(base)-len(".csv")]
	job := Job{Key: key}
	if strings.HasSuffix(strings.ToLower(name), optimizeSuffix) {
		job.Optimize = true
		name = name[:len(name)-len(optimizeSuffix)]
	}

	job.SetName = strings.Join(strings.Fields(utils.CleanFilename(name+".csv")), " ")
	if job.SetName == "" {
		return Job{}, false
	}
	return job, true
}
