package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/certify/idalloc"
)

func newStaffCodeCmd(root *rootOpts) *cobra.Command {
	var (
		role  string
		count int
	)

	cmd := &cobra.Command{
		Use:   "staff-code",
		Short: "Allocate unique staff codes (nxrint#### for interns, nxremp#### otherwise)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count 必须大于 0")
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			// 员工编号与证书编号分开登记
			cfg.IDs.RedisKey = staffRegistryKey(cfg)
			alloc, closer, err := newRegistryAllocator(ctx, cfg, idalloc.StaffCode(role), logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			for i := 0; i < count; i++ {
				code, err := alloc.Allocate(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "Employee", "员工角色（Intern/Employee）")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "生成数量")

	return cmd
}
