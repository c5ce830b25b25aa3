package job

import (
	"fmt"
	"strconv"
	"strings"

	"renditionmaker/logger"
	"renditionmaker/models"
)

// Process-argument keys.
const (
	ArgDimensions     = "dimensions"
	ArgQuality        = "quality"
	ArgMimeTypes      = "mimetypes"
	ArgKeepFormatList = "keepFormatList"
	ArgSkip           = "skip"
)

const (
	DefaultMimeTypes      = "image/png"
	DefaultKeepFormatList = "image/pjpeg,image/jpeg,image/jpg,image/gif,image/png,image/x-png"
	DefaultQuality        = "100"
)

var supportedArgs = map[string]bool{
	ArgDimensions:     true,
	ArgQuality:        true,
	ArgMimeTypes:      true,
	ArgKeepFormatList: true,
	ArgSkip:           true,
}

// ParseJobConfig turns a legacy process-argument string such as
//
//	dimensions:[100:100:true];200:200,mimetypes:image/jpeg;image/png,quality:80,skip:image/gif
//
// into a JobConfig. Single-value keys take their first occurrence, skip
// collects all of them. A missing dimensions key or a bad quality fails the
// whole configuration.
func ParseJobConfig(rawArgs string) (models.JobConfig, error) {
	args := collectArgs(rawArgs)

	dims, ok := firstValue(args, ArgDimensions)
	if !ok {
		return models.JobConfig{}, ErrMissingDimensions
	}

	mimeTypes, ok := firstValue(args, ArgMimeTypes)
	if !ok {
		mimeTypes = DefaultMimeTypes
	}

	keep, ok := firstValue(args, ArgKeepFormatList)
	if !ok {
		keep = DefaultKeepFormatList
	}

	qualityStr, ok := firstValue(args, ArgQuality)
	if !ok {
		qualityStr = DefaultQuality
	}
	quality, err := strconv.Atoi(qualityStr)
	if err != nil {
		return models.JobConfig{}, fmt.Errorf("%w: %q is not a number", ErrInvalidQuality, qualityStr)
	}
	if quality < 0 || quality > 100 {
		return models.JobConfig{}, fmt.Errorf("%w: %d is outside 0-100", ErrInvalidQuality, quality)
	}

	return models.JobConfig{
		DimensionTokens: splitList(dims, ";"),
		MimeTypes:       splitList(mimeTypes, ";"),
		Quality:         quality,
		MimeTypesToKeep: splitList(keep, ","),
		SkipMimeTypes:   append([]string{}, args[ArgSkip]...),
	}, nil
}

// collectArgs groups the values of every recognized key:value token, in order.
func collectArgs(rawArgs string) map[string][]string {
	args := make(map[string][]string)
	for _, token := range strings.Split(rawArgs, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		key, value, found := strings.Cut(token, ":")
		if !found || !supportedArgs[key] {
			logger.Debugf("ignoring process argument token %q", token)
			continue
		}
		args[key] = append(args[key], strings.TrimSpace(value))
	}
	return args
}

func firstValue(args map[string][]string, key string) (string, bool) {
	values := args[key]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// splitList splits and trims s, dropping empty pieces. The result is never
// empty: a blank list yields one blank entry, which downstream parsing reports.
func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(s)}
	}
	return out
}
