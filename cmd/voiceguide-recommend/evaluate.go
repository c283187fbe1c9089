// Copyright 2026 voiceguide Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/rafay-ai/voiceguide-recommend/base/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure recommendation quality offline with leave-one-out splitting.",
	Run: func(cmd *cobra.Command, args []string) {
		e, _ := setup(cmd)
		k, _ := cmd.Flags().GetInt("top-k")
		report, err := e.Evaluate(context.Background(), k)
		if err != nil {
			log.Logger().Fatal("failed to evaluate", zap.Error(err))
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Metric", fmt.Sprintf("@%d", report.K)})
		table.Append([]string{"Users", fmt.Sprintf("%d", report.Users)})
		table.Append([]string{"Precision", fmt.Sprintf("%.4f", report.Precision)})
		table.Append([]string{"Recall", fmt.Sprintf("%.4f", report.Recall)})
		table.Append([]string{"NDCG", fmt.Sprintf("%.4f", report.NDCG)})
		table.Append([]string{"HitRate", fmt.Sprintf("%.4f", report.HitRate)})
		table.Append([]string{"Coverage", fmt.Sprintf("%.4f", report.Coverage)})
		table.Append([]string{"Diversity", fmt.Sprintf("%.4f", report.Diversity)})
		table.Render()
	},
}

func init() {
	evaluateCommand.Flags().Int("top-k", 0, "length of evaluated lists (0 uses the configured top_k)")
}
