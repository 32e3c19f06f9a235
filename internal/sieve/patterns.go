package sieve

import (
	"regexp"

	"github.com/fiscalwatch/countylens/internal/model"
)

// metricSpec binds one metric to its designated bucket and an ordered
// pattern list. Patterns capture group 1 = amount, group 2 = optional unit
// word. rowLine is a last-resort table-row grab whose longest numeric token
// is taken as the value.
type metricSpec struct {
	key      string
	bucket   string
	patterns []*regexp.Regexp
	rowLine  *regexp.Regexp
}

var specs = []metricSpec{
	{
		key:    model.MetricOwnSourceRevenue,
		bucket: BucketRevenueActual,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)own[-\s]?source\s+revenue\s+(?:amounted\s+to|was|collected|generated).{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
			regexp.MustCompile(`(?is)(?:county\s+)?generated\s+(?:a\s+total\s+of\s+)?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)`),
			regexp.MustCompile(`(?is)own[-\s]?source\s+revenue.{0,120}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
		},
		rowLine: regexp.MustCompile(`(?im)^.*own[-\s]?source\s+revenue.*\d.*$`),
	},
	{
		key:    model.MetricOSRTarget,
		bucket: BucketRevenueActual,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)(?:osr|revenue)\s+target\s+of\s+Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
			regexp.MustCompile(`(?is)annual\s+(?:osr\s+)?target.{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
			regexp.MustCompile(`(?is)(?:of|against)\s+the\s+target.{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
		},
	},
	{
		key:    model.MetricTotalRevenue,
		bucket: BucketExchequer,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)total\s+(?:revenue|funds)\s+(?:received|released).{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
			regexp.MustCompile(`(?is)total\s+revenue.{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
		},
	},
	{
		key:    model.MetricEquitableShare,
		bucket: BucketExchequer,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)equitable\s+share\s+(?:of\s+|amounting\s+to\s+)?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
			regexp.MustCompile(`(?is)equitable\s+share.{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
		},
	},
	{
		key:    model.MetricTotalExpenditure,
		bucket: BucketExpenditure,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)spent\s+a\s+total\s+of\s+Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
			regexp.MustCompile(`(?is)total\s+expenditure.{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
		},
		rowLine: regexp.MustCompile(`(?im)^.*total\s+expenditure.*\d.*$`),
	},
	{
		key:    model.MetricDevelopmentExpenditure,
		bucket: BucketExpenditure,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)expenditure\s+on\s+development\s+programs?.{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
			regexp.MustCompile(`(?is)development\s+expenditure.{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
		},
	},
	{
		key:    model.MetricPendingBills,
		bucket: BucketPendingBills,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)(?:reported\s+)?total\s+pending\s+bills\s+of\s+Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
			regexp.MustCompile(`(?is)pending\s+bills.{0,80}?Kshs?\.?\s*([\d,\.]+)\s*(billion|million)?`),
		},
	},
}
