// Package plot renders comparison plots: the monitored and reference
// histograms overlaid as step outlines with error bars, above a panel
// showing their bin-wise ratio. Plots are produced as SVG for inlining
// into the HTML report, or saved to files in any format gonum/plot
// supports.
package plot
