package monitor

import "time"

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

var levels = []Level{LevelHigh, LevelMedium, LevelLow}

var pollutionTypes = []string{
	"Industrial waste",
	"Mixed pollution detected",
	"Fishing nets and equipment",
	"Plastic debris",
	"Chemical spill",
	"Microplastics",
	"Oil slick",
	"Large debris cluster",
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Detection struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Level     Level     `json:"level"`
	Timestamp time.Time `json:"timestamp"`
	Location  LatLng    `json:"location"`
}

type Hotspot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level Level  `json:"level"`
}

type Statistics struct {
	TotalDetections  int     `json:"totalDetections"`
	RecentDetections int     `json:"recentDetections"`
	AvgDepth         float64 `json:"avgDepth"`
	AvgTemp          float64 `json:"avgTemp"`
	HighCount        int     `json:"highCount"`
	MediumCount      int     `json:"mediumCount"`
	LowCount         int     `json:"lowCount"`
}

type Activity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Pricing     string `json:"pricing,omitempty"`
	BookingURL  string `json:"booking_url,omitempty"`
	Coordinates LatLng `json:"coordinates"`
	Emoji       string `json:"emoji"`
}

type Alert struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

const highAlertMessage = "Alert: 1 high-level pollution detected!"

func at(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

func seedDetections() []Detection {
	return []Detection{
		{ID: "1", Type: "Industrial waste", Level: LevelMedium, Timestamp: at(2025, 4, 13, 11, 9, 10), Location: LatLng{15.870032, -40.4567}},
		{ID: "2", Type: "Mixed pollution detected", Level: LevelMedium, Timestamp: at(2025, 4, 13, 11, 9, 10), Location: LatLng{-25.7448, 28.2336}},
		{ID: "3", Type: "Mixed pollution detected", Level: LevelHigh, Timestamp: at(2025, 4, 13, 11, 9, 10), Location: LatLng{35.6762, 139.6503}},
		{ID: "4", Type: "Fishing nets and equipment", Level: LevelMedium, Timestamp: at(2025, 4, 13, 11, 9, 10), Location: LatLng{-33.8688, 151.2093}},
		{ID: "5", Type: "Plastic debris", Level: LevelMedium, Timestamp: at(2025, 4, 12, 10, 45, 22), Location: LatLng{40.7128, -74.0060}},
		{ID: "6", Type: "Chemical spill", Level: LevelHigh, Timestamp: at(2025, 4, 12, 9, 30, 15), Location: LatLng{51.5074, -0.1278}},
		{ID: "7", Type: "Microplastics", Level: LevelMedium, Timestamp: at(2025, 4, 12, 8, 15, 30), Location: LatLng{-33.4489, -70.6693}},
		{ID: "8", Type: "Oil slick", Level: LevelMedium, Timestamp: at(2025, 4, 11, 17, 20, 45), Location: LatLng{19.4326, -99.1332}},
		{ID: "9", Type: "Large debris cluster", Level: LevelHigh, Timestamp: at(2025, 4, 11, 15, 10, 5), Location: LatLng{37.7749, -122.4194}},
	}
}

func seedHotspots() []Hotspot {
	return []Hotspot{
		{ID: "1", Name: "Pacific Ocean", Level: LevelHigh},
		{ID: "2", Name: "Indian Ocean", Level: LevelHigh},
		{ID: "3", Name: "Atlantic Ocean", Level: LevelMedium},
		{ID: "4", Name: "Mediterranean Sea", Level: LevelMedium},
		{ID: "5", Name: "Caribbean Sea", Level: LevelLow},
	}
}

func seedStatistics() Statistics {
	return Statistics{
		TotalDetections:  9,
		RecentDetections: 9,
		AvgDepth:         2633,
		AvgTemp:          11.7,
		HighCount:        2,
		MediumCount:      7,
		LowCount:         0,
	}
}

func seedActivities() []Activity {
	return []Activity{
		{
			ID: "1", Name: "Pacific Cleanup Initiative", Type: "cleanup", Status: "ongoing",
			Date: "2025-04-10", Location: "North Pacific",
			Description: "Large-scale cleanup operation targeting plastic waste in the North Pacific Gyre.",
			Coordinates: LatLng{35.0, -150.0}, Emoji: "🧹",
		},
		{
			ID: "2", Name: "Coral Reef Conservation", Type: "conservation", Status: "ongoing",
			Date: "2025-03-15", Location: "Great Barrier Reef",
			Description: "Conservation efforts to protect and restore damaged coral reef ecosystems.",
			Coordinates: LatLng{-18.2871, 147.6992}, Emoji: "🪸",
		},
		{
			ID: "3", Name: "Deep Sea Monitoring", Type: "monitoring", Status: "planned",
			Date: "2025-05-20", Location: "Mariana Trench",
			Description: "Deployment of sensors to monitor pollution levels and marine life in deep sea environments.",
			Coordinates: LatLng{11.3493, 142.1996}, Emoji: "📊",
		},
		{
			ID: "4", Name: "Mediterranean Research Expedition", Type: "research", Status: "completed",
			Date: "2025-02-08", Location: "Mediterranean Sea",
			Description: "Research mission studying the effects of microplastics on marine ecosystems.",
			Coordinates: LatLng{35.5, 18.0}, Emoji: "🔬",
		},
	}
}
