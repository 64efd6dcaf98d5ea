package model

// Request bodies of the POST actions. Validation tags are checked by the service layer.

type SendMessageRequest struct {
	ChatID      *int64      `json:"chat_id"`
	RecipientID *int64      `json:"recipient_id"`
	Type        MessageType `json:"type" validate:"omitempty,oneof=text image file voice"`
	Content     *string     `json:"content"`
	FileURL     *string     `json:"file_url"`
	FileName    *string     `json:"file_name"`
}

type CreateGroupRequest struct {
	Title     string  `json:"title" validate:"required,max=255"`
	MemberIDs []int64 `json:"member_ids" validate:"required,min=1,dive,gt=0"`
}

type SendCodeRequest struct {
	Phone string `json:"phone" validate:"required,max=32"`
}

type VerifyCodeRequest struct {
	Phone      string `json:"phone" validate:"required,max=32"`
	Code       string `json:"code" validate:"required"`
	DeviceInfo string `json:"device_info" validate:"max=512"`
}

type UploadRequest struct {
	FileData string `json:"file_data" validate:"required"`
	FileName string `json:"file_name" validate:"max=255"`
	FileType string `json:"file_type" validate:"max=255"`
}
