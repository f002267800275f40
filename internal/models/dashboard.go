package models

// ============================================
// Dashboard DTOs
// ============================================

type DashboardCounts struct {
	Customers     int64 `json:"customers"`
	Leads         int64 `json:"leads"`
	Tasks         int64 `json:"tasks"`
	TasksDueToday int64 `json:"tasksDueToday"`
}

// StageSummary and DailyPerformance repeat their group key under _id, the
// shape of a raw $group result.
type StageSummary struct {
	Key   string  `json:"_id"`
	Stage string  `json:"stage"`
	Count int64   `json:"count"`
	Value float64 `json:"value"`
}

type RecentActivities struct {
	Tasks []TaskResponse `json:"tasks"`
	Leads []LeadResponse `json:"leads"`
}

type DashboardStatsResponse struct {
	Counts           DashboardCounts  `json:"counts"`
	LeadsByStage     []StageSummary   `json:"leadsByStage"`
	RecentActivities RecentActivities `json:"recentActivities"`
}

type DailyPerformance struct {
	Key   string  `json:"_id"`
	Date  string  `json:"date"`
	Count int64   `json:"count"`
	Value float64 `json:"value"`
}
