package dto

// FxResyncRequest scopes one historical correction batch.
type FxResyncRequest struct {
	VehicleID int64  `json:"vehicleId" binding:"required,gt=0"`
	FromDate  string `json:"fromDate" binding:"required,datetime=2006-01-02"`
	ToDate    string `json:"toDate" binding:"required,datetime=2006-01-02"`
}

// FxResyncResult reports the outcome of a correction batch. Errors holds one
// description per failed row; failed rows never abort their siblings.
type FxResyncResult struct {
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
