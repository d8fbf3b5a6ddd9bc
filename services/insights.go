package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"vehicle-market/models"
	"vehicle-market/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(vehicles []models.Vehicle) *models.InsightReport {
	report := &models.InsightReport{
		ByCategory: make(map[models.Category]int),
		ByMake:     make(map[string]int),
	}

	if len(vehicles) == 0 {
		return report
	}

	report.TotalVehicles = len(vehicles)

	var priced []*models.Vehicle
	all := make([]*models.Vehicle, 0, len(vehicles))

	for i := range vehicles {
		v := &vehicles[i]
		all = append(all, v)
		if v.IsPromoted {
			report.PromotedVehicles++
		}
		if v.Price > 0 {
			priced = append(priced, v)
		}
		report.ByCategory[v.Category]++
		if v.Make != "" && v.Make != DefaultMake {
			report.ByMake[v.Make]++
		}
	}

	// Price stats (only vehicles with price > 0)
	if len(priced) > 0 {
		report.MinPrice = priced[0].Price
		report.MaxPrice = priced[0].Price
		report.MostExpensive = priced[0]
		var total float64
		for _, v := range priced {
			total += v.Price
			if v.Price < report.MinPrice {
				report.MinPrice = v.Price
			}
			if v.Price > report.MaxPrice {
				report.MaxPrice = v.Price
				report.MostExpensive = v
			}
		}
		report.AveragePrice = round2(total / float64(len(priced)))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	// Five newest
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > 5 {
		report.Newest = all[:5]
	} else {
		report.Newest = all
	}

	s.logger.Debug("[insights] Report over %d vehicles, %d priced", report.TotalVehicles, len(priced))
	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🚗 VEHICLE CATALOG INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total vehicles    : \033[1m%d\033[0m\n", r.TotalVehicles)
	fmt.Printf("  Promoted listings : \033[1m%d\033[0m\n", r.PromotedVehicles)
	fmt.Println()

	fmt.Printf("\033[1;33m  Price Statistics (%s)\033[0m\n", DefaultCurrency)
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average price : \033[1;32m%s\033[0m\n", FormatPrice(r.AveragePrice))
		fmt.Printf("  Minimum price : \033[1;32m%s\033[0m\n", FormatPrice(r.MinPrice))
		fmt.Printf("  Maximum price : \033[1;32m%s\033[0m\n", FormatPrice(r.MaxPrice))
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Vehicle\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Printf("  Location : %s\n", r.MostExpensive.Location)
		fmt.Printf("  Price    : \033[1;31m%s\033[0m\n", FormatPrice(r.MostExpensive.Price))
		fmt.Println()
	}

	fmt.Printf("\033[1;33m  Newest Listings\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.Newest) == 0 {
		fmt.Printf("  No listings found\n")
	} else {
		for i, v := range r.Newest {
			fmt.Printf("  \033[1m%d.\033[0m %-38s %-12s %s\n",
				i+1, truncate(v.Title, 36), FormatMileage(v.Mileage), v.CreatedAt.Format("2006-01-02"))
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Vehicles by Category\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, c := range models.Categories {
		if n := r.ByCategory[c]; n > 0 {
			fmt.Printf("  %-30s %s (%d)\n", c, bar(n), n)
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Vehicles by Make\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ByMake) == 0 {
		fmt.Printf("  No make data\n")
	} else {
		type makeCount struct {
			make  string
			count int
		}
		var makes []makeCount
		for m, cnt := range r.ByMake {
			makes = append(makes, makeCount{m, cnt})
		}
		sort.Slice(makes, func(i, j int) bool {
			if makes[i].count != makes[j].count {
				return makes[i].count > makes[j].count
			}
			return makes[i].make < makes[j].make
		})
		for _, mc := range makes {
			fmt.Printf("  %-30s %s (%d)\n", truncate(mc.make, 28), bar(mc.count), mc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

// FormatPrice renders a whole-euro amount with thousands separators, e.g. "€30,000".
func FormatPrice(price float64) string {
	n := int64(math.Round(price))
	if n < 0 {
		return "-€" + groupThousands(-n)
	}
	return "€" + groupThousands(n)
}

// FormatMileage renders a distance, e.g. "120,000 km".
func FormatMileage(mileage int) string {
	if mileage < 0 {
		mileage = 0
	}
	return groupThousands(int64(mileage)) + " km"
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

func bar(n int) string {
	if n > 40 {
		n = 40
	}
	return strings.Repeat("█", n)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
