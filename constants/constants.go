package constants

// Transfer

const (
	SftpPort             = 22
	SftpTimeoutSeconds   = 60
	SftpKeepaliveSeconds = 10
	TransferChunkBytes   = 64 * 1024 // fixed download buffer; transfers are not resumable.
	EnvVarSftpPassword   = "PROCARE_SFTP_PASSWD"
	EnvVarSftpKeyPath    = "PROCARE_SFTP_KEY_PATH"
	EnvVarProjectID      = "GOOGLE_CLOUD_PROJECT"
)

// Intake statuses

const (
	StatusOK               = "OK"
	StatusNoFilesProcessed = "No files processed"
	StatusNoNewFiles       = "No new files to upload"
	StatusUnrecognizedFeed = "Unrecognized file"
)

// Feeds

const (
	FeedTokenProcare     = "PROCARE_THERANICA_ITD_DATAFEED"
	FeedTokenBiSummary   = "BI SUMMARY"
	RefillProductCode    = 90017578200 // NDC of the product eligible for refill linkage.
	RefillSentinelSerial = "DL2432570"
	RefillOriginalPrefix = "NI"
	RegionEmptyValue     = "N/A"
	ClaimPaymentEmpty    = "no data"
	SnapshotColumnName   = "_snapshot_date"
)

// Formats

const (
	DateFormat        = "2006-01-02"
	CompactDateFormat = "20060102"
)

// Config store

const (
	ConfigCollectionJobs     = "configs_jobs"
	ConfigCollectionServices = "configs_services"
	ConfigDocFetcherProcare  = "job-data-fetcher-procare"
	ConfigDocListenerProcare = "srv-data-listener-procare"
)

// Warehouse load defaults

const (
	LoadDefaultSkipLeadingRows = 1
	LoadDefaultMaxBadRecords   = 10
)
