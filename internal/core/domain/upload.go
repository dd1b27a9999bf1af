package domain

// UploadType tells what an uploaded file is attached to.
type UploadType string

const (
	UploadInspection UploadType = "inspection"
	UploadProperty   UploadType = "property"
	UploadContest    UploadType = "contest"
	UploadDocument   UploadType = "document"
	UploadAvatar     UploadType = "avatar"
)

// Upload is the metadata row of a stored object.
type Upload struct {
	ID          string     `bson:"_id"`
	CompanyID   string     `bson:"company_id"`
	UploadType  UploadType `bson:"upload_type"`
	RelatedID   string     `bson:"related_id,omitempty"`
	FileName    string     `bson:"file_name"`
	ContentType string     `bson:"content_type"`
	Size        int64      `bson:"size"`
	StorageKey  string     `bson:"storage_key"`
	Description string     `bson:"description,omitempty"`
	Audit       `bson:",inline"`
}
