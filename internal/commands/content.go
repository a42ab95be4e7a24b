package commands

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ctxdoc/internal/exclusion"
	"github.com/temirov/ctxdoc/internal/output"
	"github.com/temirov/ctxdoc/internal/tokenizer"
	"github.com/temirov/ctxdoc/internal/types"
	"github.com/temirov/ctxdoc/internal/utils"
)

const (
	warningFileReadMessage   = "Recording unreadable file"
	warningTokenCountMessage = "Failed to count tokens"
	debugListOnlyMessage     = "Listing file without content"

	detailEmptyFile    = "file is empty"
	detailNotDecodable = "content is not decodable as text"
)

// ContentCollector reads and decodes the content of every embeddable file in a project tree.
type ContentCollector struct {
	Policy       *exclusion.Policy
	Logger       *zap.Logger
	TokenCounter tokenizer.Counter
	// Workers bounds the number of concurrent file reads. Values below 2 read sequentially.
	Workers int
}

// Collect returns one FileRecord per embeddable file of tree in the tree's
// depth-first order. Files rejected by ShouldEmbedContent are omitted. Files
// that are empty, unreadable, or not text are returned with an
// UnreadableReason instead of content. The only error returned is the
// cancellation of ctx.
func (collector *ContentCollector) Collect(ctx context.Context, tree *types.ProjectTree) ([]types.FileRecord, error) {
	policy := collector.Policy
	if policy == nil {
		policy = exclusion.NewPolicy(exclusion.DefaultRules())
	}
	logger := collector.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var embedded []*types.PathEntry
	for _, fileEntry := range tree.Files() {
		if !policy.ShouldEmbedContent(fileEntry.RelativePath) {
			logger.Debug(debugListOnlyMessage, zap.String("path", fileEntry.RelativePath))
			continue
		}
		embedded = append(embedded, fileEntry)
	}

	records := make([]types.FileRecord, len(embedded))
	group, groupContext := errgroup.WithContext(ctx)
	workers := collector.Workers
	if workers < 1 {
		workers = 1
	}
	group.SetLimit(workers)
	for index, fileEntry := range embedded {
		index, fileEntry := index, fileEntry
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			records[index] = collector.collectFile(logger, tree.RootPath, fileEntry)
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	return records, nil
}

func (collector *ContentCollector) collectFile(logger *zap.Logger, rootPath string, fileEntry *types.PathEntry) types.FileRecord {
	record := types.FileRecord{
		RelativePath: fileEntry.RelativePath,
		LanguageHint: output.LanguageHint(fileEntry.RelativePath),
		SizeBytes:    fileEntry.SizeBytes,
	}

	absolutePath := filepath.Join(rootPath, filepath.FromSlash(fileEntry.RelativePath))
	data, readError := readFile(absolutePath)
	if readError != nil {
		logger.Warn(warningFileReadMessage, zap.String("path", fileEntry.RelativePath), zap.Error(readError))
		record.UnreadableReason = types.ReasonIOError
		record.Detail = describeReadError(readError)
		return record
	}
	record.SizeBytes = int64(len(data))
	if len(data) == 0 {
		record.UnreadableReason = types.ReasonEmpty
		record.Detail = detailEmptyFile
		return record
	}

	text, decodeError := utils.DecodeText(data)
	if decodeError != nil {
		logger.Warn(warningFileReadMessage, zap.String("path", fileEntry.RelativePath), zap.Error(decodeError))
		record.UnreadableReason = types.ReasonDecodeError
		record.Detail = detailNotDecodable
		return record
	}
	record.Content = text

	if collector.TokenCounter != nil {
		countResult, countError := tokenizer.CountText(collector.TokenCounter, text)
		if countError != nil {
			logger.Warn(warningTokenCountMessage, zap.String("path", fileEntry.RelativePath), zap.Error(countError))
		} else if countResult.Counted {
			record.Tokens = countResult.Tokens
		}
	}
	return record
}

// #nosec G304
func readFile(absolutePath string) (data []byte, err error) {
	fileHandle, openError := os.Open(absolutePath)
	if openError != nil {
		return nil, openError
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil && err == nil {
			err = closeError
		}
	}()
	return io.ReadAll(fileHandle)
}

func describeReadError(readError error) string {
	var pathError *fs.PathError
	if errors.As(readError, &pathError) {
		return pathError.Op + ": " + pathError.Err.Error()
	}
	return readError.Error()
}
