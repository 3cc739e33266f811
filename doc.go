/*
Package vidroto runs a frame-sequential pipeline over a video file to
extract per-object identity statistics and per-frame RGBA alpha mattes.

Frames flow strictly forward: a FrameSource decodes, a Tracker capability
assigns persistent identities, and either the analysis aggregator collects
per-identity statistics (Analyze) or the alpha exporter drives a region
conditioned Segmenter and composites premultiplied RGBA frames
(ExportAlpha). Progress observers are invoked once per frame with
best-effort semantics, an observer failure never aborts a run.

Processing is single threaded and synchronous. Capability instances hold
per-run state, so construct a fresh RunContext for every video:

	tracker := track.NewDetectionTracker(detector, track.DefaultConfig())
	rc := vidroto.NewRunContext(tracker, segmenter, logger)

	src, err := video.OpenFile("input.mp4")
	if err != nil {
		...
	}
	defer src.Close()

	stats, err := rc.Analyze(src, vidroto.AnalyzeOptions{})
*/
package vidroto
