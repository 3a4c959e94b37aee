package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/umlaut/neural"
)

// Labels for the follow controller's inputs and outputs.
var (
	InputLabels  = []string{"pos x", "pos y", "pos z", "tgt x", "tgt y", "tgt z"}
	OutputLabels = []string{"ax", "ay", "az", "brake"}
)

// Colors for activation visualization.
var (
	ColorNodePositive = rl.Color{R: 255, G: 100, B: 100, A: 255}
	ColorNodeNegative = rl.Color{R: 100, G: 100, B: 255, A: 255}
	ColorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	ColorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	ColorLabelDim     = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// minEdgeWeight hides connections too weak to read.
const minEdgeWeight = 0.1

// DrawNetworkDiagram renders a network's layers with their current states.
func DrawNetworkDiagram(x, y, width, height int32, nn *neural.Network) {
	if nn == nil || !nn.Configured() {
		rl.DrawText("No network data", x+10, y+10, 14, ColorLabelDim)
		return
	}
	topo := nn.Topology()

	colWidth := float32(width) / 3
	nodeRadius := float32(6)
	if topo.L1 > 16 {
		nodeRadius = 4
	}

	inputNodes := columnNodes(float32(x)+colWidth/2, y, height, topo.L0)
	hiddenNodes := columnNodes(float32(x)+colWidth*1.5, y, height, topo.L1)
	outputNodes := columnNodes(float32(x)+colWidth*2.5, y, height, topo.L2)

	for h := 0; h < topo.L1; h++ {
		for i := 0; i < topo.L0; i++ {
			drawEdge(inputNodes[i], hiddenNodes[h], nn.Weights10[h*topo.L0+i])
		}
	}
	for o := 0; o < topo.L2; o++ {
		for h := 0; h < topo.L1; h++ {
			drawEdge(hiddenNodes[h], outputNodes[o], nn.Weights21[o*topo.L1+h])
		}
	}

	for i, pos := range inputNodes {
		drawNode(pos, nodeRadius, nn.Inputs()[i])
		if i < len(InputLabels) {
			labelWidth := rl.MeasureText(InputLabels[i], 10)
			rl.DrawText(InputLabels[i], int32(pos.X-nodeRadius)-labelWidth-4, int32(pos.Y)-5, 10, ColorLabelDim)
		}
	}
	for i, pos := range hiddenNodes {
		drawNode(pos, nodeRadius, nn.Hidden()[i])
	}
	for i, pos := range outputNodes {
		drawNode(pos, nodeRadius+2, nn.Outputs()[i])
		if i < len(OutputLabels) {
			rl.DrawText(OutputLabels[i], int32(pos.X+nodeRadius+6), int32(pos.Y)-5, 10, ColorLabelDim)
		}
	}
}

// columnNodes spaces n nodes evenly and vertically centered in a column.
func columnNodes(colX float32, y, height int32, n int) []rl.Vector2 {
	nodes := make([]rl.Vector2, n)
	if n == 0 {
		return nodes
	}
	usable := float32(height - 20)
	spacing := usable / float32(n)
	offset := float32(y) + 10 + spacing/2
	for i := range nodes {
		nodes[i] = rl.Vector2{X: colX, Y: offset + float32(i)*spacing}
	}
	return nodes
}

func drawNode(pos rl.Vector2, radius, activation float32) {
	rl.DrawCircleV(pos, radius, activationColor(activation))
	rl.DrawCircleLinesV(pos, radius, rl.Color{R: 100, G: 100, B: 100, A: 255})
}

func drawEdge(from, to rl.Vector2, weight float32) {
	mag := absf(weight)
	if mag < minEdgeWeight {
		return
	}
	thickness := min(max(mag*1.5, 0.5), 3)

	color := ColorEdgePositive
	if weight < 0 {
		color = ColorEdgeNegative
	}
	color.A = uint8(min(40+int(mag*40), 150))

	rl.DrawLineEx(from, to, thickness, color)
}

// activationColor maps negative states to blue and positive to red.
func activationColor(activation float32) rl.Color {
	t := min(absf(activation), 1)
	if activation >= 0 {
		return rl.Color{R: uint8(60 + t*195), G: uint8(60 - t*30), B: uint8(60 - t*30), A: 255}
	}
	return rl.Color{R: uint8(60 - t*30), G: uint8(60 - t*30), B: uint8(60 + t*195), A: 255}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
