package constant

import "errors"

var (
	ErrEntityNotFound            = errors.New("0001")
	ErrDuplicateNamespaceName    = errors.New("0002")
	ErrMissingFieldsInRequest    = errors.New("0003")
	ErrInvalidConnectionString   = errors.New("0004")
	ErrCredentialRequired        = errors.New("0005")
	ErrDecryptFailed             = errors.New("0006")
	ErrMessageNotFound           = errors.New("0007")
	ErrEntityNameRequired        = errors.New("0008")
	ErrDuplicateRuleName         = errors.New("0009")
	ErrInvalidRuleCondition      = errors.New("0010")
	ErrInvalidRuleAction         = errors.New("0011")
	ErrReplayRateLimited         = errors.New("0012")
	ErrMessageAlreadyTerminal    = errors.New("0013")
	ErrNamespaceInactive         = errors.New("0014")
	ErrClientDisposed            = errors.New("0015")
	ErrBrokerUnavailable         = errors.New("0016")
	ErrInvalidAuthType           = errors.New("0017")
	ErrInvalidExportFormat       = errors.New("0018")
	ErrInternalServer            = errors.New("0019")
	ErrSubscriptionTopicRequired = errors.New("0020")
	ErrMasterKeyRequired         = errors.New("0021")
	ErrBatchSequencesRequired    = errors.New("0022")
)
