// Package sample generates synthetic report data shaped per chart type, for
// previews and demos. Output is always tagged as sample by the executor; it
// is never substituted for a failed live query.
package sample

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"sporeless-reporting/internal/catalog"
	"sporeless-reporting/internal/report"
)

// Generator produces deterministic sample data for a given seed.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

func New(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// NewWithClock builds a generator with a fixed clock, for tests.
func NewWithClock(seed int64, now func() time.Time) *Generator {
	g := New(seed)
	g.now = now
	return g
}

// Generate produces records shaped for the config's chart type.
func (g *Generator) Generate(cfg *report.ReportConfig) []report.DataRecord {
	switch cfg.ChartType {
	case report.ChartHeatmap:
		return g.heatmap(cfg)
	case report.ChartBoxPlot:
		return g.boxPlot(cfg)
	case report.ChartScatter:
		return g.scatter(cfg)
	case report.ChartHistogram:
		return g.histogram(cfg)
	case report.ChartTreemap:
		return g.treemap(cfg)
	case report.ChartSpatialEffectiveness:
		return g.spatial(cfg)
	default:
		return g.generic(cfg)
	}
}

// normal draws one standard normal value via the Box-Muller transform.
func (g *Generator) normal() float64 {
	u1 := g.rng.Float64()
	u2 := g.rng.Float64()
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// heatmap emits an 8 zone by 7 day grid with wave-patterned values.
func (g *Generator) heatmap(cfg *report.ReportConfig) []report.DataRecord {
	zones := []string{"Zone A", "Zone B", "Zone C", "Zone D", "Zone E", "Zone F", "Zone G", "Zone H"}
	days := []string{"Day 1", "Day 2", "Day 3", "Day 4", "Day 5", "Day 6", "Day 7"}

	var records []report.DataRecord
	for x := range zones {
		for y := range days {
			dims := make(map[string]any)
			switch {
			case len(cfg.Dimensions) >= 2:
				dims[cfg.Dimensions[0].Field] = zones[x]
				dims[cfg.Dimensions[1].Field] = days[y]
			case len(cfg.Dimensions) == 1:
				dims[cfg.Dimensions[0].Field] = zones[x]
				dims["y_category"] = days[y]
			}

			waveX := math.Sin(float64(x)*0.5) * 20
			waveY := math.Cos(float64(y)*0.7) * 15
			noise := (g.rng.Float64() - 0.5) * 10
			base := 50 + waveX + waveY + noise

			measures := make(map[string]any)
			for _, m := range cfg.Measures {
				switch m.Field {
				case "growth_index", "effectiveness_score":
					measures[m.Field] = clamp(base, 0, 100)
				case "outdoor_temperature":
					measures[m.Field] = 65 + float64(x)*2 + float64(y)*1.5 + noise
				case "outdoor_humidity":
					measures[m.Field] = clamp(80-float64(x)*3-float64(y)*2+noise, 0, 100)
				default:
					measures[m.Field] = math.Max(0, base)
				}
			}

			records = append(records, report.DataRecord{
				Dimensions: dims,
				Measures:   measures,
				Metadata: map[string]any{
					"observation_id": fmt.Sprintf("obs-%d-%d", x, y),
					"x_position":     x,
					"y_position":     y,
					"placement":      zones[x],
					"day_of_phase":   y + 1,
				},
			})
		}
	}
	return records
}

// boxPlot emits 5 treatment groups of 50 normally distributed samples each.
// Group means differ, one group is skewed, and 5% of samples are outliers.
func (g *Generator) boxPlot(cfg *report.ReportConfig) []report.DataRecord {
	groups := []string{"Control", "Treatment A", "Treatment B", "Treatment C", "Treatment D"}
	const perGroup = 50
	periods := []string{"Week 1", "Week 2", "Week 3", "Week 4"}

	var records []report.DataRecord
	for gi, group := range groups {
		mean := 50 + float64(gi)*8
		stddev := 8 + float64(gi)*0.5
		skew := 0.0
		if gi == 2 {
			skew = 0.8
		}

		for i := 0; i < perGroup; i++ {
			dims := make(map[string]any)
			if len(cfg.Dimensions) >= 1 {
				dims[cfg.Dimensions[0].Field] = group
			}
			if len(cfg.Dimensions) >= 2 {
				dims[cfg.Dimensions[1].Field] = periods[i/(perGroup/len(periods))]
			}

			measures := make(map[string]any)
			for _, m := range cfg.Measures {
				z := g.normal()
				if skew != 0 {
					z += skew * z * z * math.Copysign(1, z)
				}
				value := mean + z*stddev
				if g.rng.Float64() < 0.05 {
					if g.rng.Float64() < 0.5 {
						value = mean - 3*stddev - g.rng.Float64()*stddev
					} else {
						value = mean + 3*stddev + g.rng.Float64()*stddev
					}
				}
				switch m.Field {
				case "growth_index", "effectiveness_score":
					value = clamp(value, 0, 100)
				case "outdoor_temperature":
					value = clamp(70+value*0.3, 40, 100)
				case "outdoor_humidity":
					value = clamp(60+value*0.4, 20, 100)
				}
				measures[m.Field] = value
			}

			records = append(records, report.DataRecord{
				Dimensions: dims,
				Measures:   measures,
				Metadata: map[string]any{
					"group":        group,
					"group_index":  gi,
					"sample_index": i,
				},
			})
		}
	}
	return records
}

// scatter emits 200 points split into 4 groups with distinct correlation
// patterns, from strongly positive to uncorrelated.
func (g *Generator) scatter(cfg *report.ReportConfig) []report.DataRecord {
	const size = 200
	groups := []string{"Group A", "Group B", "Group C", "Group D"}
	patterns := []struct {
		slope, intercept, noise float64
	}{
		{1.2, 10, 15},
		{-0.8, 80, 20},
		{0.4, 40, 30},
		{0, 50, 40},
	}

	var records []report.DataRecord
	for i := 0; i < size; i++ {
		gi := i / (size / len(groups))
		if gi >= len(groups) {
			gi = len(groups) - 1
		}
		p := patterns[gi]

		dims := make(map[string]any)
		if len(cfg.Dimensions) >= 1 {
			dims[cfg.Dimensions[0].Field] = groups[gi]
		}

		x := g.rng.Float64() * 100
		y := p.slope*x + p.intercept + (g.rng.Float64()-0.5)*p.noise
		if g.rng.Float64() < 0.03 {
			y = g.rng.Float64() * 100
		}
		y = clamp(y, 0, 100)

		measures := make(map[string]any)
		if len(cfg.Measures) >= 2 {
			xKey := cfg.Measures[0].Field
			yKey := cfg.Measures[1].Field
			switch xKey {
			case "outdoor_temperature", "indoor_temperature":
				measures[xKey] = 50 + x*0.4
			default:
				measures[xKey] = x
			}
			switch yKey {
			case "outdoor_temperature", "indoor_temperature":
				measures[yKey] = 50 + y*0.4
			default:
				measures[yKey] = y
			}
		}
		if len(cfg.Measures) >= 3 {
			sizeKey := cfg.Measures[2].Field
			measures[sizeKey] = math.Max(5, y*0.5+(g.rng.Float64()-0.5)*20)
		}

		records = append(records, report.DataRecord{
			Dimensions: dims,
			Measures:   measures,
			Metadata: map[string]any{
				"point_id":    fmt.Sprintf("point_%d", i+1),
				"group":       groups[gi],
				"group_index": gi,
			},
		})
	}
	return records
}

// histogram emits 500 samples from one randomly chosen distribution family:
// normal, log-normal, bimodal, or uniform with outliers.
func (g *Generator) histogram(cfg *report.ReportConfig) []report.DataRecord {
	const size = 500
	families := []string{"normal", "skewed", "bimodal", "uniform"}
	family := g.rng.Intn(len(families))

	var records []report.DataRecord
	for i := 0; i < size; i++ {
		dims := make(map[string]any)
		if len(cfg.Dimensions) >= 1 {
			dims[cfg.Dimensions[0].Field] = "All Data"
		}

		measures := make(map[string]any)
		for _, m := range cfg.Measures {
			var value float64
			switch family {
			case 0:
				value = 50 + g.normal()*15
			case 1:
				value = math.Exp(3+g.normal()*0.5) * 0.5
			case 2:
				if g.rng.Float64() < 0.5 {
					value = 30 + g.normal()*10
				} else {
					value = 70 + g.normal()*10
				}
			default:
				value = g.rng.Float64()*80 + 10
				if g.rng.Float64() < 0.05 {
					if g.rng.Float64() < 0.5 {
						value = g.rng.Float64() * 10
					} else {
						value = 90 + g.rng.Float64()*10
					}
				}
			}
			switch m.Field {
			case "growth_index", "effectiveness_score":
				value = clamp(value, 0, 100)
			case "outdoor_temperature", "indoor_temperature":
				value = clamp(50+value*0.4, 40, 100)
			case "outdoor_humidity", "indoor_humidity":
				value = clamp(value, 20, 100)
			}
			measures[m.Field] = value
		}

		records = append(records, report.DataRecord{
			Dimensions: dims,
			Measures:   measures,
			Metadata: map[string]any{
				"sample_id":         fmt.Sprintf("sample_%d", i+1),
				"distribution_type": families[family],
			},
		})
	}
	return records
}

// treemap emits 4 sites by 5 petri codes over 7 days, with values growing
// exponentially over time at per-site rates.
func (g *Generator) treemap(cfg *report.ReportConfig) []report.DataRecord {
	sites := []string{"Site A", "Site B", "Site C", "Site D"}
	petriCodes := []string{"P001", "P002", "P003", "P004", "P005"}
	const timePoints = 7
	siteMultiplier := map[string]float64{
		"Site A": 1.2, "Site B": 0.9, "Site C": 1.1, "Site D": 0.8,
	}

	var records []report.DataRecord
	for t := 0; t < timePoints; t++ {
		date := g.now().AddDate(0, 0, -(timePoints - t - 1)).Format("2006-01-02")
		for _, site := range sites {
			for _, petri := range petriCodes {
				dims := make(map[string]any)
				if len(cfg.Dimensions) >= 1 {
					dims[cfg.Dimensions[0].Field] = site
				}
				if len(cfg.Dimensions) >= 2 {
					dims[cfg.Dimensions[1].Field] = petri
				}
				if len(cfg.Dimensions) >= 3 {
					dims[cfg.Dimensions[2].Field] = date
				}

				measures := make(map[string]any)
				for _, m := range cfg.Measures {
					base := g.rng.Float64()*50 + 20
					rate := 1 + g.rng.Float64()*0.3
					noise := (g.rng.Float64() - 0.5) * 10
					value := clamp(base*math.Pow(rate, float64(t))*siteMultiplier[site]+noise, 0, 100)

					switch m.Field {
					case "colony_count":
						measures[m.Field] = math.Floor(value * 10)
					case "effectiveness_score":
						measures[m.Field] = math.Max(0, 100-value)
					default:
						measures[m.Field] = value
					}
				}

				stage := "late"
				if t < 2 {
					stage = "early"
				} else if t < 5 {
					stage = "mid"
				}
				records = append(records, report.DataRecord{
					Dimensions: dims,
					Measures:   measures,
					Metadata: map[string]any{
						"petri_code":       petri,
						"observation_date": date,
						"day_number":       t + 1,
						"growth_stage":     stage,
					},
				})
			}
		}
	}
	return records
}

// spatial emits 50 geo-located sites, 70% placed inside effectiveness
// clusters and the rest scattered across the region bounds.
func (g *Generator) spatial(cfg *report.ReportConfig) []report.DataRecord {
	const siteCount = 50
	const latMin, latMax = 40.0, 45.0
	const lngMin, lngMax = -120.0, -115.0
	clusters := []struct {
		lat, lng, radius, effectiveness, variance float64
	}{
		{41.5, -118.5, 0.8, 85, 10},
		{43.2, -117.0, 1.0, 45, 15},
		{42.0, -119.0, 0.6, 70, 8},
		{44.0, -116.5, 0.7, 60, 12},
	}
	regions := []string{"North", "South", "East", "West", "Central"}

	var records []report.DataRecord
	for i := 0; i < siteCount; i++ {
		var lat, lng, base float64
		if g.rng.Float64() < 0.7 {
			c := clusters[g.rng.Intn(len(clusters))]
			angle := g.rng.Float64() * 2 * math.Pi
			dist := g.rng.Float64() * c.radius
			lat = c.lat + dist*math.Cos(angle)
			lng = c.lng + dist*math.Sin(angle)
			base = c.effectiveness + (g.rng.Float64()-0.5)*c.variance
		} else {
			lat = latMin + g.rng.Float64()*(latMax-latMin)
			lng = lngMin + g.rng.Float64()*(lngMax-lngMin)
			base = g.rng.Float64() * 100
		}

		dims := make(map[string]any)
		if len(cfg.Dimensions) >= 1 {
			dims[cfg.Dimensions[0].Field] = fmt.Sprintf("Site_%d", i+1)
		}
		if len(cfg.Dimensions) >= 2 {
			dims[cfg.Dimensions[1].Field] = regions[i/(siteCount/len(regions))]
		}

		measures := make(map[string]any)
		for _, m := range cfg.Measures {
			switch m.Field {
			case "latitude":
				measures[m.Field] = lat
			case "longitude":
				measures[m.Field] = lng
			case "effectiveness_score", "growth_index":
				influence := (lat-latMin)/(latMax-latMin)*20 - 10
				measures[m.Field] = clamp(base+influence, 0, 100)
			case "elevation":
				norm := (lng - lngMin) / (lngMax - lngMin)
				measures[m.Field] = 500 + math.Sin(norm*math.Pi)*1500 + (g.rng.Float64()-0.5)*200
			case "treatment_count":
				measures[m.Field] = float64(g.rng.Intn(10) + 1)
			default:
				measures[m.Field] = g.rng.Float64() * 100
			}
		}

		records = append(records, report.DataRecord{
			Dimensions: dims,
			Measures:   measures,
			Metadata: map[string]any{
				"site_id":   fmt.Sprintf("site_%d", i+1),
				"site_name": fmt.Sprintf("Research Site %d", i+1),
				"latitude":  lat,
				"longitude": lng,
				"site_type": []string{"experimental", "control", "monitoring"}[g.rng.Intn(3)],
			},
		})
	}
	return records
}

// generic emits 20 rows with enum-aware dimension values, realistic measure
// ranges, and drill-down identifiers.
func (g *Generator) generic(cfg *report.ReportConfig) []report.DataRecord {
	const size = 20
	programNames := []string{"Seedling Phase 1", "Growth Optimization Study", "Environmental Impact Analysis", "Yield Enhancement Program", "Pest Resistance Trial"}
	siteNames := []string{"Greenhouse Alpha", "Field Station Beta", "Laboratory Gamma", "Research Facility Delta", "Test Site Epsilon"}
	placements := []string{"P1", "P2", "P3", "P4", "P5", "S1", "R1"}
	stages := []string{"None", "Trace", "Low", "Moderate", "High"}

	var records []report.DataRecord
	for i := 0; i < size; i++ {
		dims := make(map[string]any)
		for _, dim := range cfg.Dimensions {
			switch dim.DataType {
			case catalog.TypeEnum:
				if len(dim.EnumValues) > 0 {
					dims[dim.Field] = dim.EnumValues[i%len(dim.EnumValues)]
				} else {
					dims[dim.Field] = fmt.Sprintf("Value %d", i+1)
				}
			case catalog.TypeText:
				dims[dim.Field] = fmt.Sprintf("Text Value %d", i+1)
			case catalog.TypeDate, catalog.TypeTimestamp:
				dims[dim.Field] = g.now().AddDate(0, 0, -i).Format("2006-01-02")
			default:
				dims[dim.Field] = fmt.Sprintf("Value %d", i+1)
			}
		}

		measures := make(map[string]any)
		for _, m := range cfg.Measures {
			switch m.Field {
			case "outdoor_temperature":
				measures[m.Field] = float64(g.rng.Intn(30) + 60)
			case "outdoor_humidity":
				measures[m.Field] = float64(g.rng.Intn(40) + 40)
			default:
				measures[m.Field] = float64(g.rng.Intn(100) + 1)
			}
		}

		fungicide := "No"
		if i%2 == 0 {
			fungicide = "Yes"
		}
		records = append(records, report.DataRecord{
			Dimensions: dims,
			Measures:   measures,
			Metadata: map[string]any{
				"observation_id":       g.sampleID(),
				"submission_id":        g.sampleID(),
				"site_id":              g.sampleID(),
				"program_id":           g.sampleID(),
				"petri_code":           fmt.Sprintf("PETRI_%03d", i+1),
				"created_at":           g.now().Add(-time.Duration(i) * 24 * time.Hour).Format(time.RFC3339),
				"placement":            placements[i%len(placements)],
				"fungicide_used":       fungicide,
				"petri_growth_stage":   stages[i%len(stages)],
				"program_name":         programNames[i%len(programNames)],
				"site_name":            siteNames[i%len(siteNames)],
				"global_submission_id": 1100001 + i,
			},
		})
	}
	return records
}

// sampleID draws a UUID from the generator's seeded randomness so sample
// output is reproducible.
func (g *Generator) sampleID() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
