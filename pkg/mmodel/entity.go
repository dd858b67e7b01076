package mmodel

import "time"

// EntityCounts are the runtime message counters of a queue or subscription.
type EntityCounts struct {
	Active             int64 `json:"active"`
	DeadLetter         int64 `json:"deadLetter"`
	Scheduled          int64 `json:"scheduled"`
	Transfer           int64 `json:"transfer"`
	TransferDeadLetter int64 `json:"transferDeadLetter"`
	Total              int64 `json:"total"`
}

// Queue is the structured view of a broker queue and its runtime state.
type Queue struct {
	Name                             string       `json:"name"`
	Status                           string       `json:"status"`
	Counts                           EntityCounts `json:"counts"`
	SizeInBytes                      int64        `json:"sizeInBytes"`
	MaxSizeInMegabytes               int32        `json:"maxSizeInMegabytes"`
	DefaultMessageTimeToLive         string       `json:"defaultMessageTimeToLive,omitempty"`
	LockDuration                     string       `json:"lockDuration,omitempty"`
	MaxDeliveryCount                 int32        `json:"maxDeliveryCount"`
	RequiresSession                  bool         `json:"requiresSession"`
	RequiresDuplicateDetection       bool         `json:"requiresDuplicateDetection"`
	EnablePartitioning               bool         `json:"enablePartitioning"`
	DeadLetteringOnMessageExpiration bool         `json:"deadLetteringOnMessageExpiration"`
	ForwardTo                        string       `json:"forwardTo,omitempty"`
	ForwardDeadLetteredMessagesTo    string       `json:"forwardDeadLetteredMessagesTo,omitempty"`
	CreatedAt                        time.Time    `json:"createdAt"`
	UpdatedAt                        time.Time    `json:"updatedAt"`
	AccessedAt                       time.Time    `json:"accessedAt"`
}

// Topic is the structured view of a broker topic.
type Topic struct {
	Name                       string    `json:"name"`
	Status                     string    `json:"status"`
	SizeInBytes                int64     `json:"sizeInBytes"`
	MaxSizeInMegabytes         int32     `json:"maxSizeInMegabytes"`
	DefaultMessageTimeToLive   string    `json:"defaultMessageTimeToLive,omitempty"`
	RequiresDuplicateDetection bool      `json:"requiresDuplicateDetection"`
	EnablePartitioning         bool      `json:"enablePartitioning"`
	SubscriptionCount          int32     `json:"subscriptionCount"`
	ScheduledMessageCount      int32     `json:"scheduledMessageCount"`
	CreatedAt                  time.Time `json:"createdAt"`
	UpdatedAt                  time.Time `json:"updatedAt"`
	AccessedAt                 time.Time `json:"accessedAt"`
}

// Subscription is the structured view of a topic subscription and its runtime state.
type Subscription struct {
	TopicName                        string       `json:"topicName"`
	Name                             string       `json:"name"`
	Status                           string       `json:"status"`
	Counts                           EntityCounts `json:"counts"`
	LockDuration                     string       `json:"lockDuration,omitempty"`
	MaxDeliveryCount                 int32        `json:"maxDeliveryCount"`
	RequiresSession                  bool         `json:"requiresSession"`
	DeadLetteringOnMessageExpiration bool         `json:"deadLetteringOnMessageExpiration"`
	ForwardTo                        string       `json:"forwardTo,omitempty"`
	ForwardDeadLetteredMessagesTo    string       `json:"forwardDeadLetteredMessagesTo,omitempty"`
	CreatedAt                        time.Time    `json:"createdAt"`
	UpdatedAt                        time.Time    `json:"updatedAt"`
	AccessedAt                       time.Time    `json:"accessedAt"`
}
