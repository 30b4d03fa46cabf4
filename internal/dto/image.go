package dto

type ImageQuery struct {
	Query string `form:"query" binding:"required"`
	Count int    `form:"count" binding:"omitempty,min=1,max=30"`
}

type ImageResponse struct {
	ID             string            `json:"id"`
	URLs           map[string]string `json:"urls"`
	AltDescription *string           `json:"alt_description"`
	Description    *string           `json:"description"`
}
