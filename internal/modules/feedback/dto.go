package feedback

// SubmitFeedbackRequest carries a customer's rating for a finished order.
type SubmitFeedbackRequest struct {
	OrderID int64  `json:"order_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// RespondRequest is the admin's one-shot reply to a feedback entry.
type RespondRequest struct {
	Response string `json:"response" binding:"required"`
}
