package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/histgo/executor"
)

// RunLog is a DynamoDB-backed task commit log. A distributed run commits
// each completed task together with its result store key; a later attempt
// of the same run reads the log and skips the committed tasks.
//
// Commits use a conditional write, so when two attempts race on the same
// task the first commit wins and the second is dropped silently. Both
// attempts stored an identical result, which makes either key valid.
//
// Table schema:
//   - Partition key: run_id (string)
//   - Sort key: task_index (number)
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name histgo-runs \
//	  --attribute-definitions AttributeName=run_id,AttributeType=S AttributeName=task_index,AttributeType=N \
//	  --key-schema AttributeName=run_id,KeyType=HASH AttributeName=task_index,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type RunLog struct {
	ddbClient DDBClient
	tableName string
	runID     string
}

var _ executor.RunLog = (*RunLog)(nil)

// NewRunLog creates a run log for one run ID. The run ID must match the
// executor's configured run, or a resumed attempt will look for results
// under the wrong spill keys.
func NewRunLog(ddbClient DDBClient, tableName, runID string) *RunLog {
	return &RunLog{
		ddbClient: ddbClient,
		tableName: tableName,
		runID:     runID,
	}
}

// Completed returns the result store keys of all committed tasks, by task
// index. The query paginates, so runs larger than one response page resolve
// fully.
func (l *RunLog) Completed(ctx context.Context) (map[int]string, error) {
	done := make(map[int]string)

	var startKey map[string]types.AttributeValue
	for {
		resp, err := l.ddbClient.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(l.tableName),
			KeyConditionExpression: aws.String("run_id = :run"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":run": &types.AttributeValueMemberS{Value: l.runID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query run log: %w", err)
		}

		for _, item := range resp.Items {
			idxAttr, ok := item["task_index"].(*types.AttributeValueMemberN)
			if !ok {
				return nil, errors.New("run log: missing task_index attribute")
			}
			keyAttr, ok := item["result_key"].(*types.AttributeValueMemberS)
			if !ok {
				return nil, errors.New("run log: missing result_key attribute")
			}

			var idx int
			if _, err := fmt.Sscanf(idxAttr.Value, "%d", &idx); err != nil {
				return nil, fmt.Errorf("run log: parse task_index: %w", err)
			}
			done[idx] = keyAttr.Value
		}

		if len(resp.LastEvaluatedKey) == 0 {
			return done, nil
		}
		startKey = resp.LastEvaluatedKey
	}
}

// MarkDone commits one task's result key. Committing a task a second time
// is a no-op; the first commit wins.
func (l *RunLog) MarkDone(ctx context.Context, index int, key string) error {
	_, err := l.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item: map[string]types.AttributeValue{
			"run_id":     &types.AttributeValueMemberS{Value: l.runID},
			"task_index": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", index)},
			"result_key": &types.AttributeValueMemberS{Value: key},
		},
		ConditionExpression: aws.String("attribute_not_exists(task_index)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil
		}
		return fmt.Errorf("commit task %d: %w", index, err)
	}

	return nil
}
