package pos

const (
	TopicSessionSettled         = "pos.session.settled"
	TopicCustomerOrderSubmitted = "pos.customer.order.submitted"
)

// Partition key = table name, so events for one table keep their order.
func PartitionKey(tableName string) []byte { return []byte(tableName) }
