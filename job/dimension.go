package job

import (
	"strconv"
	"strings"

	"renditionmaker/logger"
	"renditionmaker/models"
)

// ParseDimension parses one dimension token: "W:H", "W:H:crop" or the same
// wrapped in brackets ("[100:100:true]"). ok is false for anything that does
// not yield a positive width and height; that token is skipped, not fatal.
func ParseDimension(token string) (spec models.DimensionSpec, ok bool) {
	str := strings.TrimSpace(token)
	if open := strings.Index(str, "["); open >= 0 {
		rest := str[open+1:]
		end := strings.Index(rest, "]")
		if end < 0 {
			logger.Debugf("cannot parse width/height, missing closing bracket in %q", token)
			return models.DimensionSpec{}, false
		}
		str = rest[:end]
	}

	fragments := strings.Split(str, ":")
	if len(fragments) < 2 {
		logger.Debugf("cannot parse dimension, insufficient arguments in %q", str)
		return models.DimensionSpec{}, false
	}

	width, err := strconv.Atoi(fragments[0])
	if err != nil {
		logger.Debugf("cannot parse dimension, invalid width in %q: %v", str, err)
		return models.DimensionSpec{}, false
	}
	height, err := strconv.Atoi(fragments[1])
	if err != nil {
		logger.Debugf("cannot parse dimension, invalid height in %q: %v", str, err)
		return models.DimensionSpec{}, false
	}
	if width <= 0 || height <= 0 {
		logger.Debugf("cannot parse dimension, width and height must be positive in %q", str)
		return models.DimensionSpec{}, false
	}

	crop := len(fragments) > 2 && strings.EqualFold(fragments[2], "true")
	return models.DimensionSpec{Width: width, Height: height, CenterCrop: crop}, true
}
