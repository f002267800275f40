package types

// User roles
const (
	RoleAdmin = "admin"
	RoleSales = "sales"
)

// Customer interaction types
const (
	InteractionCall    = "call"
	InteractionEmail   = "email"
	InteractionMeeting = "meeting"
)

// Lead pipeline stages, in progression order
const (
	StageNew         = "New"
	StageContacted   = "Contacted"
	StageQualified   = "Qualified"
	StageProposal    = "Proposal"
	StageNegotiation = "Negotiation"
	StageWon         = "Won"
	StageLost        = "Lost"
)

// Lead sources
const (
	SourceWebsite       = "Website"
	SourceReferral      = "Referral"
	SourceSocialMedia   = "Social Media"
	SourceEmailCampaign = "Email Campaign"
	SourceColdCall      = "Cold Call"
	SourceEvent         = "Event"
	SourceOther         = "Other"
)

// Task status values
const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Task priority values
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task relatedToModel tags
const (
	ModelCustomer = "Customer"
	ModelLead     = "Lead"
)

var ValidRoles = []string{RoleAdmin, RoleSales}

var ValidInteractionTypes = []string{InteractionCall, InteractionEmail, InteractionMeeting}

// LeadStages is ordered; sorting and grouping by stage follow this order.
var LeadStages = []string{
	StageNew, StageContacted, StageQualified, StageProposal,
	StageNegotiation, StageWon, StageLost,
}

var LeadSources = []string{
	SourceWebsite, SourceReferral, SourceSocialMedia, SourceEmailCampaign,
	SourceColdCall, SourceEvent, SourceOther,
}

var TaskStatuses = []string{StatusNotStarted, StatusInProgress, StatusCompleted}

var TaskPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

var RelatedModels = []string{ModelCustomer, ModelLead}

func IsValidRole(role string) bool          { return contains(ValidRoles, role) }
func IsValidInteraction(kind string) bool   { return contains(ValidInteractionTypes, kind) }
func IsValidStage(stage string) bool        { return contains(LeadStages, stage) }
func IsValidSource(source string) bool      { return contains(LeadSources, source) }
func IsValidTaskStatus(status string) bool  { return contains(TaskStatuses, status) }
func IsValidPriority(priority string) bool  { return contains(TaskPriorities, priority) }
func IsValidRelatedModel(model string) bool { return contains(RelatedModels, model) }

// Rank returns the position of value in an ordered enum, or len(values) when absent
// so unknown values sort last.
func Rank(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return len(values)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
