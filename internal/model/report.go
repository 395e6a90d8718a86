package model

// FinancialSummary is the chama's headline financial position.
type FinancialSummary struct {
	TotalContributions       float64 `json:"totalContributions"`
	TotalPenalties           float64 `json:"totalPenalties"`
	TotalLoansDisbursed      float64 `json:"totalLoansDisbursed"`
	TotalLoanRepayments      float64 `json:"totalLoanRepayments"`
	OutstandingLoanPrincipal float64 `json:"outstandingLoanPrincipal"`
	NetPosition              float64 `json:"netPosition"`
}

// LoanStatusBreakdown is one slice of the loan portfolio by status.
type LoanStatusBreakdown struct {
	Status      LoanStatus `json:"status"`
	Count       int        `json:"count"`
	TotalAmount float64    `json:"totalAmount"`
}

// LoanPortfolioReport summarizes a chama's lending book.
type LoanPortfolioReport struct {
	TotalPrincipalDisbursed float64               `json:"totalPrincipalDisbursed"`
	TotalRepayments         float64               `json:"totalRepayments"`
	StatusBreakdown         []LoanStatusBreakdown `json:"statusBreakdown"`
}

// DashboardStats is the per-chama dashboard headline block.
type DashboardStats struct {
	TotalContributionsThisYear float64 `json:"totalContributionsThisYear"`
	ActiveLoansCount           int     `json:"activeLoansCount"`
	TotalLoanAmountActive      float64 `json:"totalLoanAmountActive"`
	TotalMembers               int     `json:"totalMembers"`
}

// PageMeta is the pagination block of a paginated response.
type PageMeta struct {
	Page         int `json:"page"`
	Limit        int `json:"limit"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
}
