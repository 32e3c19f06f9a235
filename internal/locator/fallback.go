package locator

// defaultRangeStart is the last-resort start page when a county is missing
// from both the TOC and the fallback map. It points at the first county
// chapter so downstream extraction at least sees chapter-shaped content.
const defaultRangeStart = 324

// fallbackStartPages maps normalized county names to approximate physical
// start pages observed in recent report editions. Consulted only when the
// TOC parse yields nothing for a county; resolved ranges from here carry
// reduced confidence.
var fallbackStartPages = map[string]int{
	"mombasa":         324,
	"kwale":           328,
	"kilifi":          332,
	"tana river":      336,
	"lamu":            340,
	"taita taveta":    344,
	"garissa":         348,
	"wajir":           352,
	"mandera":         356,
	"marsabit":        360,
	"isiolo":          153,
	"meru":            368,
	"tharaka nithi":   372,
	"embu":            376,
	"kitui":           380,
	"machakos":        384,
	"makueni":         388,
	"nyandarua":       392,
	"nyeri":           396,
	"kirinyaga":       400,
	"murang'a":        404,
	"kiambu":          408,
	"turkana":         412,
	"west pokot":      416,
	"samburu":         420,
	"trans nzoia":     424,
	"uasin gishu":     428,
	"elgeyo marakwet": 432,
	"nandi":           436,
	"baringo":         440,
	"laikipia":        444,
	"nakuru":          448,
	"narok":           452,
	"kajiado":         456,
	"kericho":         460,
	"bomet":           464,
	"kakamega":        468,
	"vihiga":          472,
	"bungoma":         476,
	"busia":           480,
	"siaya":           484,
	"kisumu":          488,
	"homa bay":        492,
	"migori":          496,
	"kisii":           500,
	"nyamira":         504,
	"nairobi":         508,
}
