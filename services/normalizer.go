package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"vehicle-market/models"
	"vehicle-market/utils"
)

const (
	DefaultYear           = 2020
	DefaultCurrency       = "EUR"
	DefaultTitle          = "Vehicle"
	DefaultDescription    = "No description available"
	DefaultMake           = "Unknown"
	DefaultModel          = "Unknown"
	DefaultLocation       = "Tiranë, Shqipëri"
	DefaultSellerID       = "1"
	DefaultSellerName     = "Seller"
	DefaultSellerRating   = 4.5
	DefaultMemberSince    = "Jan 2023"
	DefaultPlaceholderURL = "https://images.pexels.com/photos/1592384/pexels-photo-1592384.jpeg?auto=compress&cs=tinysrgb&w=800"
)

var (
	// separatorRegexp matches thousands separators and stray whitespace
	separatorRegexp = regexp.MustCompile(`[,\s]`)
	// leadingFloatRegexp captures the numeric prefix a lenient parser would accept
	leadingFloatRegexp = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)
	leadingIntRegexp   = regexp.MustCompile(`^[+-]?\d+`)
	schemeRegexp       = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Category keyword tables. Classification is a best-effort heuristic and is
// known to misclassify some titles ("caravan" reads as a truck).
var (
	motorcycleTitleWords = []string{"motorcycle", "bike"}
	motorcycleBrands     = []string{"yamaha", "honda", "kawasaki", "suzuki", "ducati", "bmw"}
	motorcycleModelCodes = []string{"r1", "cbr", "ninja"}
	truckTitleWords      = []string{"truck", "van", "crafter"}
	largeTitleWords      = []string{"bus", "large"}
)

type keyword[T any] struct {
	needle string
	value  T
}

// Ordered candidate lists; the first contained needle wins.
var (
	transmissionKeywords = []keyword[models.Transmission]{
		{"automatic", models.TransmissionAutomatic},
		{"auto", models.TransmissionAutomatic},
		{"cvt", models.TransmissionCVT},
	}
	fuelKeywords = []keyword[models.FuelType]{
		{"diesel", models.FuelDiesel},
		{"electric", models.FuelElectric},
		{"hybrid", models.FuelHybrid},
		{"lpg", models.FuelLPG},
		{"cng", models.FuelCNG},
	}
	conditionKeywords = []keyword[models.Condition]{
		{"new", models.ConditionNew},
		{"damaged", models.ConditionDamaged},
	}
)

// Normalizer transforms RawVehicles into canonical Vehicles. It never fails:
// every missing or malformed field resolves to a documented default.
type Normalizer struct {
	apiHost     string
	placeholder string
	logger      *utils.Logger
}

// NewNormalizer creates a Normalizer that resolves relative image paths
// against apiHost and substitutes placeholder when a record has no image.
func NewNormalizer(apiHost, placeholder string, logger *utils.Logger) *Normalizer {
	if placeholder == "" {
		placeholder = DefaultPlaceholderURL
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Normalizer{
		apiHost:     strings.TrimRight(apiHost, "/"),
		placeholder: placeholder,
		logger:      logger,
	}
}

// NormalizeAll maps every raw record through Normalize, preserving order.
func (n *Normalizer) NormalizeAll(raw []*models.RawVehicle, fetchedAt time.Time) []models.Vehicle {
	out := make([]models.Vehicle, 0, len(raw))
	for _, r := range raw {
		out = append(out, n.Normalize(r, fetchedAt))
	}
	return out
}

// Normalize converts one raw record. fetchedAt stands in for absent timestamps.
func (n *Normalizer) Normalize(raw *models.RawVehicle, fetchedAt time.Time) models.Vehicle {
	if raw == nil {
		raw = &models.RawVehicle{}
	}

	id := raw.ID.Trimmed()
	if id == "" {
		id = uuid.NewString()
		n.logger.Warn("[normalizer] Record %q has no id, assigned %s", raw.Title.Trimmed(), id)
	}

	title := textOr(raw.Title, DefaultTitle)
	brand := raw.Brand.Name.Trimmed()
	address := raw.Address.Trimmed()
	location := firstNonEmpty(address, raw.Location.Trimmed(), DefaultLocation)

	createdAt := parseTime(raw.CreatedAt.Trimmed(), fetchedAt)
	updatedAt := parseTime(raw.UpdatedAt.Trimmed(), createdAt)

	seller := n.normalizeSeller(&raw.Seller, address, raw.Location.Trimmed())

	features := make([]string, 0, len(raw.Features))
	features = append(features, raw.Features...)

	return models.Vehicle{
		ID:           id,
		SellerID:     seller.ID,
		Seller:       seller,
		Title:        title,
		Description:  textOr(raw.Description, DefaultDescription),
		Category:     inferCategory(raw.Title.Trimmed(), brand),
		Make:         firstNonEmpty(brand, DefaultMake),
		Model:        deriveModel(raw.Title.Trimmed(), brand),
		Year:         ParseYear(raw.Year.String()),
		Price:        ParsePrice(raw.OfferPrice.String()),
		Currency:     DefaultCurrency,
		Condition:    NormalizeCondition(raw.Condition.String()),
		Mileage:      int(ParsePrice(raw.Mileage.String())),
		FuelType:     NormalizeFuelType(raw.FuelType.String()),
		Transmission: NormalizeTransmission(raw.Transmission.String()),
		Location:     location,
		Address:      address,
		CountryID:    raw.CountryID.Ptr(),
		CityID:       raw.CityID.Ptr(),
		Images:       []string{n.ResolveImageURL(raw.ThumbImage.String())},
		Features:     features,
		IsPromoted:   bool(raw.IsPromoted),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		Views:        nonNegative(int(ParsePrice(raw.Views.String()))),
	}
}

func (n *Normalizer) normalizeSeller(raw *models.RawSeller, address, location string) models.Seller {
	s := models.Seller{
		ID:           firstNonEmpty(raw.ID.Trimmed(), DefaultSellerID),
		Name:         firstNonEmpty(raw.Name.Trimmed(), DefaultSellerName),
		Rating:       ParsePrice(raw.Rating.String()),
		ReviewCount:  nonNegative(int(ParsePrice(raw.ReviewCount.String()))),
		IsVerified:   bool(raw.IsVerified),
		Location:     firstNonEmpty(raw.Location.Trimmed(), address, location, DefaultLocation),
		MemberSince:  firstNonEmpty(raw.MemberSince.Trimmed(), DefaultMemberSince),
		ResponseTime: raw.ResponseTime.Trimmed(),
		Phone:        raw.Phone.Trimmed(),
	}
	if s.Rating == 0 {
		s.Rating = DefaultSellerRating
	}
	if avatar := raw.Avatar.Trimmed(); avatar != "" {
		s.Avatar = n.ResolveImageURL(avatar)
	}
	return s
}

// ResolveImageURL turns a stored image path into an absolute URL. Backslashes
// become forward slashes; paths that already carry a scheme pass through.
func (n *Normalizer) ResolveImageURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return n.placeholder
	}
	path = strings.ReplaceAll(path, `\`, "/")
	if schemeRegexp.MatchString(path) {
		return path
	}
	return n.apiHost + "/" + strings.TrimLeft(path, "/")
}

// ParsePrice strips thousands separators and whitespace, then reads the
// leading number. Anything unparsable is 0.
//
//	"45,000"     → 45000
//	"12 500 EUR" → 12500
//	""           → 0
func ParsePrice(raw string) float64 {
	cleaned := separatorRegexp.ReplaceAllString(raw, "")
	match := leadingFloatRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseYear reads the leading integer, or DefaultYear when there is none.
func ParseYear(raw string) int {
	match := leadingIntRegexp.FindString(strings.TrimSpace(raw))
	if match == "" {
		return DefaultYear
	}
	y, err := strconv.Atoi(match)
	if err != nil {
		return DefaultYear
	}
	return y
}

func NormalizeTransmission(raw string) models.Transmission {
	return matchKeyword(raw, transmissionKeywords, models.TransmissionManual)
}

func NormalizeFuelType(raw string) models.FuelType {
	return matchKeyword(raw, fuelKeywords, models.FuelGasoline)
}

func NormalizeCondition(raw string) models.Condition {
	return matchKeyword(raw, conditionKeywords, models.ConditionUsed)
}

func matchKeyword[T any](raw string, candidates []keyword[T], fallback T) T {
	lower := strings.ToLower(raw)
	for _, c := range candidates {
		if strings.Contains(lower, c.needle) {
			return c.value
		}
	}
	return fallback
}

func inferCategory(title, brand string) models.Category {
	lowerTitle := strings.ToLower(title)
	lowerBrand := strings.ToLower(brand)

	if containsAny(lowerTitle, motorcycleTitleWords) ||
		(containsAny(lowerBrand, motorcycleBrands) && containsAny(lowerTitle, motorcycleModelCodes)) {
		return models.CategoryMotorcycle
	}
	if containsAny(lowerTitle, truckTitleWords) {
		return models.CategoryTruck
	}
	if containsAny(lowerTitle, largeTitleWords) {
		return models.CategoryLargeVehicle
	}
	return models.CategoryCar
}

// deriveModel removes the first occurrence of the brand from the title.
func deriveModel(title, brand string) string {
	model := title
	if brand != "" {
		model = strings.Replace(title, brand, "", 1)
	}
	return firstNonEmpty(strings.TrimSpace(model), DefaultModel)
}

func parseTime(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return fallback
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func textOr(v models.FlexString, fallback string) string {
	return firstNonEmpty(v.Trimmed(), fallback)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
