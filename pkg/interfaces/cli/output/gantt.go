package output

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// ContractTimeline draws contracts as a Gantt chart, one row per vendor.
type ContractTimeline struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	StartTime    time.Time
	EndTime      time.Time
	Today        time.Time
}

// TimelineBar represents a single contract in the chart
type TimelineBar struct {
	Vendor    string
	Number    string
	Title     string
	Status    entities.ContractStatus
	StartDate time.Time
	EndDate   time.Time
	X         int
	Width     int
	Color     string
}

// NewContractTimeline sizes the chart to fit contracts with 10% padding either side.
func NewContractTimeline(contracts []*entities.Contract, today time.Time) *ContractTimeline {
	if len(contracts) == 0 {
		return &ContractTimeline{
			Width:        800,
			Height:       200,
			MarginLeft:   150,
			MarginTop:    50,
			MarginRight:  50,
			MarginBottom: 50,
			RowHeight:    25,
			Today:        today,
		}
	}

	startTime := contracts[0].StartDate
	endTime := contracts[0].EndDate
	for _, c := range contracts {
		if c.StartDate.Before(startTime) {
			startTime = c.StartDate
		}
		if c.EndDate.After(endTime) {
			endTime = c.EndDate
		}
	}
	if today.Before(startTime) {
		startTime = today
	}

	padding := time.Duration(float64(endTime.Sub(startTime)) * 0.1)
	if padding < 24*time.Hour {
		padding = 24 * time.Hour
	}
	startTime = startTime.Add(-padding)
	endTime = endTime.Add(padding)

	vendors := make(map[string]struct{})
	for _, c := range contracts {
		vendors[c.VendorID] = struct{}{}
	}

	rowHeight := 30
	return &ContractTimeline{
		Width:        1200,
		Height:       len(vendors)*rowHeight + 170,
		MarginLeft:   200,
		MarginTop:    60,
		MarginRight:  100,
		MarginBottom: 80,
		RowHeight:    rowHeight,
		StartTime:    startTime,
		EndTime:      endTime,
		Today:        today,
	}
}

// GenerateSVG renders the chart.
func (ct *ContractTimeline) GenerateSVG(contracts []*entities.Contract) string {
	if len(contracts) == 0 {
		return ct.generateEmptyChart()
	}

	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, ct.Width, ct.Height))
	svg.WriteString(`<defs>`)
	svg.WriteString(`<style>`)
	svg.WriteString(`.vendor-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.today-line { stroke: #E53935; stroke-width: 2; stroke-dasharray: 4 2; }`)
	svg.WriteString(`.contract-bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.contract-text { font-family: Arial, sans-serif; font-size: 9px; fill: white; }`)
	svg.WriteString(`</style>`)
	svg.WriteString(`</defs>`)

	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, ct.Width, ct.Height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="30" class="title" text-anchor="middle">Contract Timeline</text>`, ct.Width/2))

	rows := ct.organizeBars(ct.createBars(contracts))

	ct.drawTimeAxis(&svg)
	ct.drawTimeGrid(&svg, len(rows))
	ct.drawVendorRows(&svg, rows)
	ct.drawToday(&svg, len(rows))
	ct.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (ct *ContractTimeline) xFor(t time.Time) int {
	chartWidth := ct.Width - ct.MarginLeft - ct.MarginRight
	total := ct.EndTime.Sub(ct.StartTime)
	return ct.MarginLeft + int(float64(t.Sub(ct.StartTime))/float64(total)*float64(chartWidth))
}

func (ct *ContractTimeline) createBars(contracts []*entities.Contract) []TimelineBar {
	bars := make([]TimelineBar, 0, len(contracts))
	for _, c := range contracts {
		x := ct.xFor(c.StartDate)
		width := ct.xFor(c.EndDate) - x
		if width < 2 {
			width = 2
		}
		bars = append(bars, TimelineBar{
			Vendor:    c.VendorID,
			Number:    c.Number,
			Title:     c.Title,
			Status:    c.Status,
			StartDate: c.StartDate,
			EndDate:   c.EndDate,
			X:         x,
			Width:     width,
			Color:     barColor(c.Status),
		})
	}
	return bars
}

// organizeBars groups bars by vendor, each row sorted by start date.
func (ct *ContractTimeline) organizeBars(bars []TimelineBar) map[string][]TimelineBar {
	rows := make(map[string][]TimelineBar)
	for _, bar := range bars {
		rows[bar.Vendor] = append(rows[bar.Vendor], bar)
	}
	for vendor := range rows {
		sort.Slice(rows[vendor], func(i, j int) bool {
			return rows[vendor][i].StartDate.Before(rows[vendor][j].StartDate)
		})
	}
	return rows
}

// gridInterval picks daily, weekly or monthly ticks for the visible span.
func (ct *ContractTimeline) gridInterval() (time.Duration, string) {
	days := int(math.Ceil(ct.EndTime.Sub(ct.StartTime).Hours() / 24))
	switch {
	case days <= 30:
		return 24 * time.Hour, "Jan 2"
	case days <= 180:
		return 7 * 24 * time.Hour, "Jan 2"
	default:
		return 30 * 24 * time.Hour, "Jan 2006"
	}
}

func (ct *ContractTimeline) drawTimeAxis(svg *strings.Builder) {
	interval, labelFormat := ct.gridInterval()
	for t := ct.StartTime.Truncate(interval); t.Before(ct.EndTime); t = t.Add(interval) {
		x := ct.xFor(t)
		if x >= ct.MarginLeft && x <= ct.Width-ct.MarginRight {
			svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="time-label" text-anchor="middle">%s</text>`,
				x, ct.Height-ct.MarginBottom+15, t.Format(labelFormat)))
		}
	}
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		ct.MarginLeft, ct.Height-ct.MarginBottom, ct.Width-ct.MarginRight, ct.Height-ct.MarginBottom))
}

// rowHeight shrinks rows so they never overlap the time axis.
func (ct *ContractTimeline) rowHeight(numRows int) int {
	available := ct.Height - ct.MarginBottom - 30 - ct.MarginTop
	h := available / numRows
	if h > ct.RowHeight {
		h = ct.RowHeight
	}
	return h
}

func (ct *ContractTimeline) drawTimeGrid(svg *strings.Builder, numRows int) {
	gridBottom := ct.MarginTop + numRows*ct.rowHeight(numRows)
	interval, _ := ct.gridInterval()
	for t := ct.StartTime.Truncate(interval); t.Before(ct.EndTime); t = t.Add(interval) {
		x := ct.xFor(t)
		if x >= ct.MarginLeft && x <= ct.Width-ct.MarginRight {
			svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
				x, ct.MarginTop, x, gridBottom))
		}
	}
}

func (ct *ContractTimeline) drawVendorRows(svg *strings.Builder, rows map[string][]TimelineBar) {
	vendors := make([]string, 0, len(rows))
	for vendor := range rows {
		vendors = append(vendors, vendor)
	}
	// Rows are already sorted, so the first bar is the earliest.
	sort.Slice(vendors, func(i, j int) bool {
		a, b := rows[vendors[i]][0].StartDate, rows[vendors[j]][0].StartDate
		if !a.Equal(b) {
			return a.Before(b)
		}
		return vendors[i] < vendors[j]
	})

	rowHeight := ct.rowHeight(len(vendors))
	for i, vendor := range vendors {
		y := ct.MarginTop + i*rowHeight

		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="vendor-label" text-anchor="end">%s</text>`,
			ct.MarginLeft-15, y+rowHeight/2+4, html.EscapeString(vendor)))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			ct.MarginLeft, y+rowHeight, ct.Width-ct.MarginRight, y+rowHeight))

		for _, bar := range rows[vendor] {
			ct.drawBar(svg, bar, y, rowHeight)
		}
	}
}

func (ct *ContractTimeline) drawBar(svg *strings.Builder, bar TimelineBar, rowY int, rowHeight int) {
	barHeight := rowHeight - 4
	barY := rowY + 2

	svg.WriteString(fmt.Sprintf(`<g><rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="contract-bar"/>`,
		bar.X, barY, bar.Width, barHeight, bar.Color))

	if bar.Width > 60 {
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="contract-text" text-anchor="middle">%s</text>`,
			bar.X+bar.Width/2, barY+barHeight/2+3, html.EscapeString(bar.Number)))
	}

	tooltip := fmt.Sprintf("%s %s, %s to %s, %s",
		bar.Number, bar.Title,
		bar.StartDate.Format(dateLayout),
		bar.EndDate.Format(dateLayout),
		bar.Status)
	svg.WriteString(fmt.Sprintf(`<title>%s</title></g>`, html.EscapeString(tooltip)))
}

func (ct *ContractTimeline) drawToday(svg *strings.Builder, numRows int) {
	x := ct.xFor(ct.Today)
	if x < ct.MarginLeft || x > ct.Width-ct.MarginRight {
		return
	}
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="today-line"/>`,
		x, ct.MarginTop-5, x, ct.MarginTop+numRows*ct.rowHeight(numRows)+5))
}

func (ct *ContractTimeline) drawLegend(svg *strings.Builder) {
	legendX := ct.Width - ct.MarginRight - 200
	legendY := ct.Height - 45

	items := []entities.ContractStatus{
		entities.ContractDraft,
		entities.ContractActive,
		entities.ContractRenewed,
		entities.ContractExpired,
		entities.ContractTerminated,
	}
	for i, status := range items {
		itemX := legendX - 400 + i*120
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`,
			itemX, legendY, barColor(status)))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="time-label">%s</text>`,
			itemX+18, legendY+8, status))
	}
}

func barColor(status entities.ContractStatus) string {
	switch status {
	case entities.ContractActive:
		return "#4CAF50"
	case entities.ContractRenewed:
		return "#2196F3"
	case entities.ContractDraft:
		return "#9E9E9E"
	case entities.ContractExpired:
		return "#FF9800"
	case entities.ContractTerminated:
		return "#E53935"
	default:
		return "#9E9E9E"
	}
}

func (ct *ContractTimeline) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">No Contracts Found</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, ct.Width, ct.Height, ct.Width, ct.Height, ct.Width/2, ct.Height/2)
}
